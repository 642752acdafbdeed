package productspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortName(t *testing.T) {
	cfg := testConfig(t)

	shortName, err := cfg.ShortName(Combination{
		Group:     "forward_stream",
		Product:   "standard",
		SensorSet: "cris-jpss1",
		Species:   "ozone",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRPSDL2O3CRS2FS", shortName)
}

func TestCollectionIDTemplate(t *testing.T) {
	id := CollectionID("unity", "ops", "TRPSDL2O3CRS2FS", "2")
	assert.Equal(t, "URN:NASA:UNITY:unity:ops:TRPSDL2O3CRS2FS___2", id)

	// Inputs are embedded verbatim, case preserved.
	id = CollectionID("Unity", "Dev", "muses-x", "1.0 ")
	assert.Equal(t, "URN:NASA:UNITY:Unity:Dev:muses-x___1.0 ", id)
}

func TestCollectionIDsPreserveOrder(t *testing.T) {
	ids := CollectionIDs("unity", "ops", []string{"B", "A"}, "1")
	require.Len(t, ids, 2)
	assert.Equal(t, "URN:NASA:UNITY:unity:ops:B___1", ids[0])
	assert.Equal(t, "URN:NASA:UNITY:unity:ops:A___1", ids[1])
}

func TestTropessShortNames(t *testing.T) {
	cfg := testConfig(t)
	group, err := cfg.Group("forward_stream")
	require.NoError(t, err)

	shortNames, err := cfg.TropessShortNames(group, nil)
	require.NoError(t, err)
	// 2 products x 1 sensor set x 7 species
	assert.Len(t, shortNames, 14)
	assert.Equal(t, "TRPSYL2O3CRS2FS", shortNames[0])
}

func TestMusesShortNames(t *testing.T) {
	cfg := testConfig(t)
	group, err := cfg.Group("reanalysis")
	require.NoError(t, err)

	shortNames := cfg.MusesShortNames(group, nil)
	assert.Equal(t, []string{"MUSES-CRS1-RS", "MUSES-AIRSOMI-RS"}, shortNames)

	ss, err := cfg.SensorSet("airs-omi")
	require.NoError(t, err)
	shortNames = cfg.MusesShortNames(group, ss)
	assert.Equal(t, []string{"MUSES-AIRSOMI-RS"}, shortNames)
}
