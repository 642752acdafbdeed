package productspec

// Combination is one valid (group, product, sensor set, species) tuple.
type Combination struct {
	Group     string
	Product   string
	SensorSet string
	Species   string
}

// CombinationFilter narrows the combinations enumerated by Combinations.
// Empty slices apply no filtering for that dimension. Sensor set filters
// match either the canonical keyword or a group-scoped alias.
type CombinationFilter struct {
	Groups     []string
	SensorSets []string
}

// Combinations enumerates the valid tuples of the specification in
// specification order. Callers needing sorted output must sort explicitly.
func (c *Config) Combinations(filter CombinationFilter) ([]Combination, error) {
	groups := c.groups
	if len(filter.Groups) > 0 {
		groups = make([]*CollectionGroup, 0, len(filter.Groups))
		for _, keyword := range filter.Groups {
			group, err := c.Group(keyword)
			if err != nil {
				return nil, err
			}
			groups = append(groups, group)
		}
	}

	var combinations []Combination
	for _, group := range groups {
		sensorSets, err := c.filterGroupSensorSets(group, filter.SensorSets)
		if err != nil {
			return nil, err
		}
		for _, product := range group.Products {
			for _, ss := range sensorSets {
				for _, species := range group.Species {
					combinations = append(combinations, Combination{
						Group:     group.Keyword,
						Product:   product.Keyword,
						SensorSet: ss.Keyword,
						Species:   species.Keyword,
					})
				}
			}
		}
	}
	return combinations, nil
}

// filterGroupSensorSets returns the sensor sets of a group, optionally
// narrowed by keyword-or-alias references. Every reference must resolve.
func (c *Config) filterGroupSensorSets(group *CollectionGroup, refs []string) ([]*SensorSet, error) {
	if len(refs) == 0 {
		sensorSets := make([]*SensorSet, 0, len(group.SensorSets))
		for _, mapping := range group.SensorSets {
			sensorSets = append(sensorSets, mapping.SensorSet)
		}
		return sensorSets, nil
	}

	var sensorSets []*SensorSet
	for _, ref := range refs {
		ss, err := c.ResolveSensorSet(group, ref)
		if err != nil {
			return nil, err
		}
		sensorSets = append(sensorSets, ss)
	}
	return sensorSets, nil
}
