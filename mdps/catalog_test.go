package mdps_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
)

func TestDateFilterExpression(t *testing.T) {
	tests := []struct {
		name   string
		filter mdps.DateFilter
		want   string
	}{
		{name: "zero", filter: mdps.DateFilter{}, want: ""},
		{
			name:   "single date",
			filter: mdps.OnDate("Jan 5 2024"),
			want:   "processing_datetime='2024-01-05'",
		},
		{
			name:   "range",
			filter: mdps.InRange("2024-01-01", "2024-01-03"),
			want:   "processing_datetime>='2024-01-01' and processing_datetime<='2024-01-03'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Expression()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateFilterInvalidDate(t *testing.T) {
	_, err := mdps.OnDate("whenever").Expression()
	require.Error(t, err)
}

func TestCatalogQuerySendsFilter(t *testing.T) {
	var gotFilter, gotLimit string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		gotLimit = r.URL.Query().Get("limit")
		writeJSON(t, w, map[string]any{"features": []any{}, "links": []any{}})
	})

	result, err := client.Catalog().Query(context.Background(), "some-id", mdps.OnDate("2024-01-05"), 1000)
	require.NoError(t, err)
	assert.Equal(t, "processing_datetime='2024-01-05'", gotFilter)
	assert.Equal(t, "1000", gotLimit)
	assert.True(t, result.Empty())
}

func TestCatalogQueryEmptyResultIsValid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"features": []any{}, "links": []any{}})
	})

	result, err := client.Catalog().Query(context.Background(), "empty-id", mdps.DateFilter{}, 0)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Items)
}

func TestCatalogQueryMissingFeaturesKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"detail": "backend hiccup"})
	})

	_, err := client.Catalog().Query(context.Background(), "broken-id", mdps.DateFilter{}, 0)
	var queryErr *mdps.CatalogQueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "broken-id", queryErr.CollectionID)
}

func TestCatalogQueryDecodesItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"features": []map[string]any{{
				"type":         "Feature",
				"stac_version": "1.0.0",
				"id":           "granule-1",
				"geometry":     nil,
				"properties": map[string]any{
					"processing_datetime": "2024-01-05T00:00:00Z",
					"archive_status":      "cnm_r_success",
				},
				"assets": map[string]any{},
				"links":  []any{},
			}},
			"links": []map[string]string{{"rel": "self", "href": "http://example/items"}},
		})
	})

	result, err := client.Catalog().Query(context.Background(), "some-id", mdps.DateFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "granule-1", result.Items[0].Id)
	assert.Equal(t, "cnm_r_success", result.Items[0].Properties["archive_status"])
	require.Len(t, result.Links, 1)
	assert.Equal(t, "self", result.Links[0].Rel)
}

func TestWriteSnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"features": []any{}, "links": []any{}})
	})

	result, err := client.Catalog().Query(context.Background(), "snap-id", mdps.DateFilter{}, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap-id.stac")
	require.NoError(t, result.WriteSnapshot(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"features": [], "links": []}`, string(data))
}

func TestQueryAllAbortsOnError(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(t, w, map[string]string{"message": "boom"})
			return
		}
		writeJSON(t, w, map[string]any{"features": []any{}, "links": []any{}})
	})

	_, err := client.Catalog().QueryAll(context.Background(), []string{"a", "b", "c"}, mdps.DateFilter{}, 0)
	require.Error(t, err)
	var apiErr *mdps.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 2, calls, "query batch must abort on first failure")
}
