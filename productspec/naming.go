package productspec

import "fmt"

// collectionIDTemplate is the MDPS collection identifier layout. The short
// name and version are embedded verbatim, no case folding or trimming.
const collectionIDTemplate = "URN:NASA:UNITY:%s:%s:%s___%s"

// CollectionID formats the MDPS collection identifier for a short name.
func CollectionID(project, venue, shortName, version string) string {
	return fmt.Sprintf(collectionIDTemplate, project, venue, shortName, version)
}

// CollectionIDs formats one collection identifier per short name, preserving
// order.
func CollectionIDs(project, venue string, shortNames []string, version string) []string {
	ids := make([]string, 0, len(shortNames))
	for _, shortName := range shortNames {
		ids = append(ids, CollectionID(project, venue, shortName, version))
	}
	return ids
}

// ShortName derives the DAAC-facing TROPESS short name for a combination,
// e.g. TRPSDL2O3CRS2FS for the standard ozone CrIS-JPSS1 forward stream
// product.
func (c *Config) ShortName(comb Combination) (string, error) {
	group, err := c.Group(comb.Group)
	if err != nil {
		return "", err
	}
	product, ok := c.productIndex[comb.Product]
	if !ok {
		return "", fmt.Errorf("productspec: unknown product type %q", comb.Product)
	}
	sensorSet, err := c.SensorSet(comb.SensorSet)
	if err != nil {
		return "", err
	}
	species, ok := c.speciesIndex[comb.Species]
	if !ok {
		return "", fmt.Errorf("productspec: unknown species %q", comb.Species)
	}
	return "TRPS" + product.ShortName + species.ShortName + sensorSet.ShortName + group.ShortName, nil
}

// MusesShortName derives the short name of the MUSES intermediate product
// for one sensor set of a collection group.
func MusesShortName(group *CollectionGroup, sensorSet *SensorSet) string {
	return fmt.Sprintf("MUSES-%s-%s", sensorSet.ShortName, group.ShortName)
}

// TropessShortNames returns the TROPESS short names of a collection group in
// specification order: the full product x sensor set x species cross-product,
// optionally narrowed to one sensor set.
func (c *Config) TropessShortNames(group *CollectionGroup, sensorSet *SensorSet) ([]string, error) {
	filter := CombinationFilter{Groups: []string{group.Keyword}}
	if sensorSet != nil {
		filter.SensorSets = []string{sensorSet.Keyword}
	}
	combinations, err := c.Combinations(filter)
	if err != nil {
		return nil, err
	}

	shortNames := make([]string, 0, len(combinations))
	for _, comb := range combinations {
		shortName, err := c.ShortName(comb)
		if err != nil {
			return nil, err
		}
		shortNames = append(shortNames, shortName)
	}
	return shortNames, nil
}

// MusesShortNames returns one MUSES short name per sensor set of the group,
// or exactly one when a sensor set is given.
func (c *Config) MusesShortNames(group *CollectionGroup, sensorSet *SensorSet) []string {
	if sensorSet != nil {
		return []string{MusesShortName(group, sensorSet)}
	}
	shortNames := make([]string, 0, len(group.SensorSets))
	for _, mapping := range group.SensorSets {
		shortNames = append(shortNames, MusesShortName(group, mapping.SensorSet))
	}
	return shortNames
}
