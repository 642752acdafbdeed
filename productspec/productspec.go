// Package productspec holds the static TROPESS product specification: the
// collection groups, sensor sets, product types and species that are valid
// for TROPESS/MUSES processing, and the naming rules derived from them.
//
// The specification is loaded once into an immutable Config which is passed
// explicitly to anything that needs it. Entry order in the specification is
// preserved: enumeration follows the order the configuration was written in.
package productspec

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"
)

//go:embed spec.yaml
var embeddedSpec []byte

// SensorSet is an instrument/platform combination contributing input data
// to a collection group.
type SensorSet struct {
	Keyword   string `yaml:"keyword"`
	ShortName string `yaml:"short_name"`
}

// ProductType is a TROPESS product level variant (summary/standard/full).
type ProductType struct {
	Keyword   string `yaml:"keyword"`
	ShortName string `yaml:"short_name"`
}

// Species is a retrieved atmospheric species.
type Species struct {
	Keyword   string `yaml:"keyword"`
	ShortName string `yaml:"short_name"`
}

// SensorSetMapping attaches a sensor set to a collection group under the
// alias used in data directory structures.
type SensorSetMapping struct {
	Alias     string
	SensorSet *SensorSet
}

// CollectionGroup is a logical grouping of product variants sharing a
// retrieval configuration.
type CollectionGroup struct {
	Keyword    string
	ShortName  string
	SensorSets []SensorSetMapping
	Products   []*ProductType
	Species    []*Species
}

// Config is the parsed, immutable product specification.
type Config struct {
	sensorSets []*SensorSet
	products   []*ProductType
	species    []*Species
	groups     []*CollectionGroup

	sensorSetIndex map[string]*SensorSet
	productIndex   map[string]*ProductType
	speciesIndex   map[string]*Species
	groupIndex     map[string]*CollectionGroup
}

type specFile struct {
	SensorSets   []*SensorSet   `yaml:"sensor_sets"`
	ProductTypes []*ProductType `yaml:"product_types"`
	Species      []*Species     `yaml:"species"`
	Groups       []specGroup    `yaml:"collection_groups"`
}

type specGroup struct {
	Keyword      string            `yaml:"keyword"`
	ShortName    string            `yaml:"short_name"`
	SensorSets   []specSensorEntry `yaml:"sensor_sets"`
	ProductTypes []string          `yaml:"product_types"`
	Species      []string          `yaml:"species"`
}

type specSensorEntry struct {
	Keyword string `yaml:"keyword"`
	Alias   string `yaml:"alias"`
}

// Load parses a product specification document into a Config.
func Load(data []byte) (*Config, error) {
	var file specFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("productspec: parse specification: %w", err)
	}

	cfg := &Config{
		sensorSets:     file.SensorSets,
		products:       file.ProductTypes,
		species:        file.Species,
		sensorSetIndex: make(map[string]*SensorSet),
		productIndex:   make(map[string]*ProductType),
		speciesIndex:   make(map[string]*Species),
		groupIndex:     make(map[string]*CollectionGroup),
	}

	for _, ss := range file.SensorSets {
		if _, dup := cfg.sensorSetIndex[ss.Keyword]; dup {
			return nil, fmt.Errorf("productspec: duplicate sensor set %q", ss.Keyword)
		}
		cfg.sensorSetIndex[ss.Keyword] = ss
	}
	for _, pt := range file.ProductTypes {
		cfg.productIndex[pt.Keyword] = pt
	}
	for _, sp := range file.Species {
		cfg.speciesIndex[sp.Keyword] = sp
	}

	for _, entry := range file.Groups {
		group := &CollectionGroup{
			Keyword:   entry.Keyword,
			ShortName: entry.ShortName,
		}
		for _, sensor := range entry.SensorSets {
			ss, ok := cfg.sensorSetIndex[sensor.Keyword]
			if !ok {
				return nil, fmt.Errorf("productspec: group %q references unknown sensor set %q", entry.Keyword, sensor.Keyword)
			}
			group.SensorSets = append(group.SensorSets, SensorSetMapping{Alias: sensor.Alias, SensorSet: ss})
		}
		for _, keyword := range entry.ProductTypes {
			pt, ok := cfg.productIndex[keyword]
			if !ok {
				return nil, fmt.Errorf("productspec: group %q references unknown product type %q", entry.Keyword, keyword)
			}
			group.Products = append(group.Products, pt)
		}
		for _, keyword := range entry.Species {
			sp, ok := cfg.speciesIndex[keyword]
			if !ok {
				return nil, fmt.Errorf("productspec: group %q references unknown species %q", entry.Keyword, keyword)
			}
			group.Species = append(group.Species, sp)
		}
		if _, dup := cfg.groupIndex[group.Keyword]; dup {
			return nil, fmt.Errorf("productspec: duplicate collection group %q", group.Keyword)
		}
		cfg.groups = append(cfg.groups, group)
		cfg.groupIndex[group.Keyword] = group
	}

	return cfg, nil
}

// Default loads the specification embedded in the binary.
func Default() (*Config, error) {
	return Load(embeddedSpec)
}

// Groups returns the collection groups in specification order.
func (c *Config) Groups() []*CollectionGroup {
	return c.groups
}

// Group looks up a collection group by keyword.
func (c *Config) Group(keyword string) (*CollectionGroup, error) {
	group, ok := c.groupIndex[keyword]
	if !ok {
		return nil, &UnknownCollectionGroupError{Keyword: keyword}
	}
	return group, nil
}

// SensorSet looks up a sensor set by its canonical keyword.
func (c *Config) SensorSet(keyword string) (*SensorSet, error) {
	ss, ok := c.sensorSetIndex[keyword]
	if !ok {
		return nil, &UnknownSensorSetError{Keyword: keyword}
	}
	return ss, nil
}

// ResolveSensorSet resolves a sensor set reference that may be either a
// canonical keyword or an alias scoped to the given collection group.
// The global keyword table is consulted first, then the group's aliases.
func (c *Config) ResolveSensorSet(group *CollectionGroup, keyword string) (*SensorSet, error) {
	if ss, ok := c.sensorSetIndex[keyword]; ok {
		return ss, nil
	}
	if group != nil {
		for _, mapping := range group.SensorSets {
			if mapping.Alias == keyword {
				return mapping.SensorSet, nil
			}
		}
	}
	return nil, &UnknownSensorSetError{Keyword: keyword}
}
