package mdps

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FieldDefinition describes one custom metadata field.
type FieldDefinition struct {
	Type string `json:"type"`
}

// DefaultMetadataDefinition returns the custom metadata fields used by
// TROPESS products in the MDPS data store. These become queryable STAC item
// properties once defined for the venue.
func DefaultMetadataDefinition() map[string]FieldDefinition {
	return map[string]FieldDefinition{
		"tag":                 {Type: "keyword"},
		"project":             {Type: "keyword"},
		"short_name":          {Type: "keyword"},
		"long_name":           {Type: "keyword"},
		"doi":                 {Type: "keyword"},
		"collection_group":    {Type: "keyword"},
		"product_stage":       {Type: "keyword"},
		"product_type":        {Type: "keyword"},
		"sensor_set":          {Type: "keyword"},
		"species":             {Type: "keyword"},
		"product_version":     {Type: "keyword"},
		"processing_batch":    {Type: "keyword"},
		"processing_profile":  {Type: "keyword"},
		"processing_datetime": {Type: "date"},
		"retrieval_step":      {Type: "date"},
	}
}

// MetadataService manages custom metadata definitions for the venue.
type MetadataService struct {
	client *Client
}

// Existing returns the union of metadata fields already defined across all
// registered collections.
func (s *MetadataService) Existing(ctx context.Context) (map[string]FieldDefinition, error) {
	ids, err := s.client.Collections().List(ctx, 0)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]FieldDefinition)
	for _, id := range ids {
		endpoint := fmt.Sprintf("/collections/%s/variables", url.PathEscape(id))
		var fields map[string]FieldDefinition
		if err := s.client.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &fields); err != nil {
			return nil, fmt.Errorf("mdps: read variables for %s: %w", id, err)
		}
		for name, def := range fields {
			existing[name] = def
		}
	}
	return existing, nil
}

// Merged returns the existing definition overlaid with the given fields.
// The platform requires every previously defined field to be re-submitted
// on each definition call.
func (s *MetadataService) Merged(ctx context.Context, fields map[string]FieldDefinition) (map[string]FieldDefinition, error) {
	merged, err := s.Existing(ctx)
	if err != nil {
		return nil, err
	}
	for name, def := range fields {
		merged[name] = def
	}
	return merged, nil
}

// Define commits a custom metadata definition for the current venue.
func (s *MetadataService) Define(ctx context.Context, fields map[string]FieldDefinition) error {
	if len(fields) == 0 {
		return fmt.Errorf("mdps: no metadata fields to define")
	}
	return s.client.doJSON(ctx, http.MethodPut, "/admin/custom_metadata", nil, fields, nil)
}
