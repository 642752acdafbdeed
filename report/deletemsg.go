package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
)

// DeleteMessage is the DAAC-format delete request for one product.
type DeleteMessage struct {
	Product        DeleteProduct    `json:"product"`
	Identifier     string           `json:"identifier"`
	Collection     DeleteCollection `json:"collection"`
	Provider       string           `json:"provider"`
	Version        string           `json:"version"`
	SubmissionTime string           `json:"submissionTime"`
}

// DeleteProduct names the product being deleted.
type DeleteProduct struct {
	Files []string `json:"files"`
	Name  string   `json:"name"`
}

// DeleteCollection names the DAAC collection the product belongs to.
type DeleteCollection struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DeleteMessageVersion is the DAAC message schema version.
const DeleteMessageVersion = "1.3"

// DefaultProvider is the Cumulus data source identifier for TROPESS.
const DefaultProvider = "tropess_cloud"

// WriteDeleteMessages emits one delete-request file per feature of each
// non-empty result, named delete-<product_id>-<timestamp>.json. The short
// name is taken from the features themselves and must be constant per
// collection. Returns the written file paths.
func WriteDeleteMessages(results []*mdps.QueryResult, collectionVersion, outputDir string, now time.Time) ([]string, error) {
	submissionTime := now.Format("2006-01-02T15:04:05")
	idTime := now.Format("20060102T150405")

	var written []string
	for _, result := range results {
		if result.Empty() {
			continue
		}

		shortName, err := ConstantProperty(result.Items, "short_name", true)
		if err != nil {
			return written, err
		}

		for _, item := range result.Items {
			productID := ProductID(item.Id, result.CollectionID)
			messageID := fmt.Sprintf("delete-%s-%s", productID, idTime)

			msg := DeleteMessage{
				Product:    DeleteProduct{Files: []string{}, Name: productID},
				Identifier: messageID,
				Collection: DeleteCollection{
					Name:    fmt.Sprint(shortName),
					Version: collectionVersion,
				},
				Provider:       DefaultProvider,
				Version:        DeleteMessageVersion,
				SubmissionTime: submissionTime,
			}

			path := filepath.Join(outputDir, messageID+".json")
			data, err := json.Marshal(msg)
			if err != nil {
				return written, err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return written, fmt.Errorf("report: write delete message: %w", err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// WriteSnapshots writes each result's raw catalog document to
// <collection_id>.stac under outputDir. Returns the written file paths.
func WriteSnapshots(results []*mdps.QueryResult, outputDir string) ([]string, error) {
	var written []string
	for _, result := range results {
		path := filepath.Join(outputDir, result.CollectionID+".stac")
		if err := result.WriteSnapshot(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
