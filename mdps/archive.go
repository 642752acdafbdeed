package mdps

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultArchivingExtensions are the file extensions delivered to the DAAC
// unless overridden.
var DefaultArchivingExtensions = []string{".nc"}

// ArchivingType selects which files of a product are archived.
type ArchivingType struct {
	DataType      string   `json:"data_type"`
	FileExtension []string `json:"file_extension"`
}

// ArchiveConfig is the DAAC delivery configuration for one collection.
type ArchiveConfig struct {
	DAACCollectionID    string          `json:"daac_collection_id"`
	DAACDataVersion     string          `json:"daac_data_version"`
	DAACSNSTopicARN     string          `json:"daac_sns_topic_arn"`
	DAACProvider        string          `json:"daac_provider,omitempty"`
	DAACRoleARN         string          `json:"daac_role_arn,omitempty"`
	DAACRoleSessionName string          `json:"daac_role_session_name,omitempty"`
	ArchivingTypes      []ArchivingType `json:"archiving_types"`
}

// ArchiveService manages DAAC archive configuration for collections.
type ArchiveService struct {
	client *Client
}

func archiveEndpoint(collectionID string) string {
	return fmt.Sprintf("/collections/%s/archive", url.PathEscape(collectionID))
}

// Get returns the archive configuration for a collection id. The response
// shape is owned by the platform and passed through untouched.
func (s *ArchiveService) Get(ctx context.Context, collectionID string) (map[string]any, error) {
	var cfg map[string]any
	if err := s.client.doJSON(ctx, http.MethodGet, archiveEndpoint(collectionID), nil, nil, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Add upserts the archive configuration for a collection id.
func (s *ArchiveService) Add(ctx context.Context, collectionID string, cfg ArchiveConfig) error {
	if len(cfg.ArchivingTypes) == 0 {
		cfg.ArchivingTypes = []ArchivingType{{
			DataType:      "data",
			FileExtension: DefaultArchivingExtensions,
		}}
	}
	return s.client.doJSON(ctx, http.MethodPut, archiveEndpoint(collectionID), nil, cfg, nil)
}

// Delete removes the archive configuration binding a collection id to a
// DAAC collection id.
func (s *ArchiveService) Delete(ctx context.Context, collectionID, daacCollectionID string) error {
	body := map[string]string{"daac_collection_id": daacCollectionID}
	return s.client.doJSON(ctx, http.MethodDelete, archiveEndpoint(collectionID), nil, body, nil)
}
