package report

import (
	"bytes"
	"testing"

	stac "github.com/planetlabs/go-stac"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
)

func feature(id string, props map[string]any) *stac.Item {
	return &stac.Item{
		Version:    "1.0.0",
		Id:         id,
		Properties: props,
		Assets:     map[string]*stac.Asset{},
	}
}

func TestIsArchived(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  bool
	}{
		{name: "archived", props: map[string]any{"archive_status": "cnm_r_success"}, want: true},
		{name: "other status", props: map[string]any{"archive_status": "cnm_r_failed"}, want: false},
		{name: "wrong case", props: map[string]any{"archive_status": "CNM_R_SUCCESS"}, want: false},
		{name: "missing key", props: map[string]any{}, want: false},
		{name: "non-string value", props: map[string]any{"archive_status": 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArchived(feature("f", tt.props)))
		})
	}
}

func TestDateStatus(t *testing.T) {
	items := []*stac.Item{
		feature("a", map[string]any{"processing_datetime": "2024-01-05T01:00:00Z", "archive_status": "cnm_r_success"}),
		feature("b", map[string]any{"processing_datetime": "Jan 5 2024"}),
		feature("c", map[string]any{"processing_datetime": "2024-01-06T00:00:00Z", "archive_status": "cnm_r_success"}),
	}

	status, err := DateStatus(items)
	require.NoError(t, err)
	assert.Equal(t, DateCount{Count: 2, Archived: 1}, status["2024-01-05"])
	assert.Equal(t, DateCount{Count: 1, Archived: 1}, status["2024-01-06"])
	assert.Equal(t, []string{"2024-01-05", "2024-01-06"}, SortedDates(status))
}

func TestConstantProperty(t *testing.T) {
	t.Run("all agree", func(t *testing.T) {
		items := []*stac.Item{
			feature("a", map[string]any{"species": "O3"}),
			feature("b", map[string]any{"species": "O3"}),
		}
		value, err := ConstantProperty(items, "species", true)
		require.NoError(t, err)
		assert.Equal(t, "O3", value)
	})

	t.Run("skips undefined", func(t *testing.T) {
		items := []*stac.Item{
			feature("a", map[string]any{}),
			feature("b", map[string]any{"species": "CO"}),
		}
		value, err := ConstantProperty(items, "species", true)
		require.NoError(t, err)
		assert.Equal(t, "CO", value)
	})

	t.Run("mismatch names the feature", func(t *testing.T) {
		items := []*stac.Item{
			feature("a", map[string]any{"species": "O3"}),
			feature("b", map[string]any{"species": "CO"}),
		}
		_, err := ConstantProperty(items, "species", true)
		var inconsistent *InconsistentPropertyError
		require.ErrorAs(t, err, &inconsistent)
		assert.Equal(t, "b", inconsistent.FeatureID)
		assert.Equal(t, "CO", inconsistent.Value)
		assert.Equal(t, "O3", inconsistent.Expected)
	})

	t.Run("missing required", func(t *testing.T) {
		items := []*stac.Item{feature("a", map[string]any{})}
		_, err := ConstantProperty(items, "species", true)
		var missing *MissingPropertyError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "species", missing.Property)
	})

	t.Run("missing optional", func(t *testing.T) {
		items := []*stac.Item{feature("a", map[string]any{})}
		value, err := ConstantProperty(items, "species", false)
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("array values agree", func(t *testing.T) {
		items := []*stac.Item{
			feature("a", map[string]any{"tags": []any{"x", "y"}}),
			feature("b", map[string]any{"tags": []any{"x", "y"}}),
		}
		value, err := ConstantProperty(items, "tags", true)
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y"}, value)
	})

	t.Run("array values mismatch", func(t *testing.T) {
		items := []*stac.Item{
			feature("a", map[string]any{"tags": []any{"x"}}),
			feature("b", map[string]any{"tags": []any{"y"}}),
		}
		_, err := ConstantProperty(items, "tags", true)
		var inconsistent *InconsistentPropertyError
		require.ErrorAs(t, err, &inconsistent)
		assert.Equal(t, "b", inconsistent.FeatureID)
	})
}

func TestConstantPropertyLogsSkippedFeatures(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	items := []*stac.Item{
		feature("granule-a", map[string]any{}),
		feature("granule-b", map[string]any{"species": "O3"}),
	}
	_, err := ConstantProperty(items, "species", true)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "granule-a does not define species")
}

func TestProductID(t *testing.T) {
	collectionID := "URN:NASA:UNITY:unity:ops:MUSES-CRS1-RS___1"
	featureID := collectionID + ":granule-20240105"
	assert.Equal(t, "granule-20240105", ProductID(featureID, collectionID))
}

func TestDisplaySummaryEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	results := []*mdps.QueryResult{{CollectionID: "empty-one"}}

	require.NoError(t, DisplaySummary(&buf, results, ""))
	assert.Equal(t, "empty-one is empty.\n", buf.String())
}

func TestDisplaySummaryDateTable(t *testing.T) {
	var buf bytes.Buffer
	results := []*mdps.QueryResult{{
		CollectionID: "some-id",
		Items: []*stac.Item{
			feature("some-id:g1", map[string]any{
				"processing_datetime": "2024-01-05T00:00:00Z",
				"collection_group":    "reanalysis",
				"sensor_set":          "cris-snpp",
				"product_stage":       "MUSES",
				"product_version":     "1",
				"archive_status":      "cnm_r_success",
			}),
		},
	}}

	require.NoError(t, DisplaySummary(&buf, results, ""))
	out := buf.String()
	assert.Contains(t, out, "some-id")
	assert.Contains(t, out, "2024-01-05")
	// MUSES stage omits product naming rows.
	assert.NotContains(t, out, "Short Name")
}
