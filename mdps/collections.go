package mdps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	stac "github.com/planetlabs/go-stac"
)

// CollectionService provides access to the DAPA collection registry.
type CollectionService struct {
	client *Client
}

// collectionPage is one page of the collection listing. The registry
// returns collections as STAC-style features carrying an id.
type collectionPage struct {
	Features []struct {
		ID string `json:"id"`
	} `json:"features"`
	Links []*stac.Link `json:"links"`
}

func (p *collectionPage) nextHref() string {
	for _, link := range p.Links {
		if link == nil {
			continue
		}
		if strings.EqualFold(link.Rel, "next") {
			return link.Href
		}
	}
	return ""
}

// List returns the collection identifiers known to the registry, following
// rel="next" links until exhausted or limit identifiers are collected.
// A limit of zero or less lists everything.
func (s *CollectionService) List(ctx context.Context, limit int) ([]string, error) {
	query := make(url.Values)
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}

	endpoint := "/collections"
	var ids []string
	for {
		var page collectionPage
		if err := s.client.doJSON(ctx, http.MethodGet, endpoint, query, nil, &page); err != nil {
			return nil, err
		}
		for _, feature := range page.Features {
			ids = append(ids, feature.ID)
			if limit > 0 && len(ids) >= limit {
				return ids, nil
			}
		}

		next := page.nextHref()
		if next == "" {
			return ids, nil
		}
		u, err := url.Parse(next)
		if err != nil {
			return nil, fmt.Errorf("mdps: bad next link %q: %w", next, err)
		}
		endpoint = strings.TrimPrefix(u.Path, dapaPrefix)
		query = u.Query()
	}
}

// Create registers a collection identifier with data services. Registration
// is asynchronous on the platform side; the new collection may not appear
// in listings immediately. Whether re-creating an existing identifier is a
// no-op is a property of the platform, not checked here.
func (s *CollectionService) Create(ctx context.Context, collectionID string) error {
	if collectionID == "" {
		return fmt.Errorf("mdps: collection id is required")
	}
	body := map[string]any{
		"type":         "Collection",
		"id":           collectionID,
		"stac_version": "1.0.0",
		"description":  collectionID,
		"links":        []any{},
	}
	return s.client.doJSON(ctx, http.MethodPost, "/collections", nil, body, nil)
}

// RegisterOptions controls batch registration behavior.
type RegisterOptions struct {
	// ContinueOnError keeps registering remaining identifiers after a
	// failure instead of aborting. Default is abort on first error; no
	// already-issued registration is rolled back either way.
	ContinueOnError bool
}

// RegisterAll registers each identifier in order.
func (s *CollectionService) RegisterAll(ctx context.Context, ids []string, opts RegisterOptions) error {
	var errs []error
	for _, id := range ids {
		if s.client.logger != nil {
			s.client.logger.Debugf("mdps: registering collection id %s", id)
		}
		if err := s.Create(ctx, id); err != nil {
			if !opts.ContinueOnError {
				return fmt.Errorf("mdps: register %s: %w", id, err)
			}
			errs = append(errs, fmt.Errorf("register %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Registered reports, for each given identifier, whether the registry
// knows it.
func (s *CollectionService) Registered(ctx context.Context, ids []string) (map[string]bool, error) {
	known, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	knownSet := make(map[string]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}

	status := make(map[string]bool, len(ids))
	for _, id := range ids {
		status[id] = knownSet[id]
	}
	return status, nil
}
