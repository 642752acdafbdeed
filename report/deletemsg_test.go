package report

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	stac "github.com/planetlabs/go-stac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
)

func TestWriteDeleteMessages(t *testing.T) {
	collectionID := "URN:NASA:UNITY:unity:ops:TRPSDL2O3CRS1RS___2"
	results := []*mdps.QueryResult{
		{CollectionID: "empty-id"},
		{
			CollectionID: collectionID,
			Items: []*stac.Item{
				feature(collectionID+":TROPESS_granule-1", map[string]any{"short_name": "TRPSDL2O3CRS1RS"}),
				feature(collectionID+":TROPESS_granule-2", map[string]any{"short_name": "TRPSDL2O3CRS1RS"}),
			},
		},
	}

	outputDir := t.TempDir()
	now := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)

	written, err := WriteDeleteMessages(results, "2", outputDir, now)
	require.NoError(t, err)
	require.Len(t, written, 2, "one message per feature, empty collections skipped")

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)

	var msg DeleteMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "TROPESS_granule-1", msg.Product.Name)
	assert.Empty(t, msg.Product.Files)
	assert.Equal(t, "delete-TROPESS_granule-1-20240201T103000", msg.Identifier)
	assert.Equal(t, "TRPSDL2O3CRS1RS", msg.Collection.Name)
	assert.Equal(t, "2", msg.Collection.Version)
	assert.Equal(t, "tropess_cloud", msg.Provider)
	assert.Equal(t, "1.3", msg.Version)
	assert.Equal(t, "2024-02-01T10:30:00", msg.SubmissionTime)
}

func TestWriteDeleteMessagesInconsistentShortName(t *testing.T) {
	results := []*mdps.QueryResult{{
		CollectionID: "c",
		Items: []*stac.Item{
			feature("c:g1", map[string]any{"short_name": "A"}),
			feature("c:g2", map[string]any{"short_name": "B"}),
		},
	}}

	_, err := WriteDeleteMessages(results, "1", t.TempDir(), time.Now())
	var inconsistent *InconsistentPropertyError
	require.ErrorAs(t, err, &inconsistent)
}
