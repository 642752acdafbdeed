package mdps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	stac "github.com/planetlabs/go-stac"

	"github.com/muses-processing/tropess-mdps-tools/dates"
)

// DateFilter narrows a catalog query to a processing date or an inclusive
// date range. The zero value applies no date filtering. Setting both is a
// usage error.
type DateFilter struct {
	date  string
	start string
	stop  string
}

// OnDate filters to a single processing date.
func OnDate(date string) DateFilter {
	return DateFilter{date: date}
}

// InRange filters to an inclusive processing date range.
func InRange(start, stop string) DateFilter {
	return DateFilter{start: start, stop: stop}
}

// IsZero reports whether no date filtering was requested.
func (f DateFilter) IsZero() bool {
	return f.date == "" && f.start == "" && f.stop == ""
}

// Expression renders the filter as a DAPA filter expression over the
// processing_datetime property, normalizing date strings to YYYY-MM-DD.
// Returns the empty string for the zero filter.
func (f DateFilter) Expression() (string, error) {
	hasDate := f.date != ""
	hasRange := f.start != "" || f.stop != ""

	switch {
	case hasDate && hasRange:
		return "", ErrAmbiguousDateFilter
	case hasRange:
		start, err := dates.Normalize(f.start)
		if err != nil {
			return "", fmt.Errorf("mdps: invalid range start: %w", err)
		}
		stop, err := dates.Normalize(f.stop)
		if err != nil {
			return "", fmt.Errorf("mdps: invalid range stop: %w", err)
		}
		return fmt.Sprintf("processing_datetime>='%s' and processing_datetime<='%s'", start, stop), nil
	case hasDate:
		date, err := dates.Normalize(f.date)
		if err != nil {
			return "", fmt.Errorf("mdps: invalid processing date: %w", err)
		}
		return fmt.Sprintf("processing_datetime='%s'", date), nil
	default:
		return "", nil
	}
}

// QueryResult is one catalog query response for one collection id. Raw
// retains the full backend document for snapshot output; Items and Links
// are the decoded features.
type QueryResult struct {
	CollectionID string
	Raw          json.RawMessage
	Items        []*stac.Item
	Links        []*stac.Link
}

// Empty reports whether the query matched no features.
func (r *QueryResult) Empty() bool {
	return len(r.Items) == 0
}

// WriteSnapshot serializes the raw catalog document to path.
func (r *QueryResult) WriteSnapshot(path string) error {
	if err := os.WriteFile(path, r.Raw, 0o644); err != nil {
		return fmt.Errorf("mdps: write snapshot: %w", err)
	}
	return nil
}

// CatalogService queries the data catalog for collection contents.
type CatalogService struct {
	client *Client
}

// Query fetches the STAC features of a collection, optionally filtered by
// processing date. A response without a features key is a
// CatalogQueryError; an empty features list is a valid empty result.
func (s *CatalogService) Query(ctx context.Context, collectionID string, filter DateFilter, limit int) (*QueryResult, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("mdps: collection id is required")
	}

	expr, err := filter.Expression()
	if err != nil {
		return nil, err
	}

	query := make(url.Values)
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if expr != "" {
		query.Set("filter", expr)
		if s.client.logger != nil {
			s.client.logger.Debugf("mdps: query filter: %s", expr)
		}
	}

	endpoint := fmt.Sprintf("/collections/%s/items", url.PathEscape(collectionID))
	var raw json.RawMessage
	if err := s.client.doJSON(ctx, http.MethodGet, endpoint, query, nil, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Features *json.RawMessage `json:"features"`
		Links    []*stac.Link     `json:"links"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &CatalogQueryError{CollectionID: collectionID, Body: raw}
	}
	if envelope.Features == nil {
		return nil, &CatalogQueryError{CollectionID: collectionID, Body: raw}
	}

	var items []*stac.Item
	if err := json.Unmarshal(*envelope.Features, &items); err != nil {
		return nil, &CatalogQueryError{CollectionID: collectionID, Body: raw}
	}

	return &QueryResult{
		CollectionID: collectionID,
		Raw:          raw,
		Items:        items,
		Links:        envelope.Links,
	}, nil
}

// QueryAll runs Query for each collection id in order, aborting on the
// first failure.
func (s *CatalogService) QueryAll(ctx context.Context, collectionIDs []string, filter DateFilter, limit int) ([]*QueryResult, error) {
	results := make([]*QueryResult, 0, len(collectionIDs))
	for _, id := range collectionIDs {
		result, err := s.Query(ctx, id, filter, limit)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
