// Package report aggregates catalog query results into per-date summaries,
// tabular displays and DAAC delete-request documents.
package report

import (
	"fmt"
	"reflect"
	"sort"

	stac "github.com/planetlabs/go-stac"
	"github.com/rs/zerolog/log"

	"github.com/muses-processing/tropess-mdps-tools/dates"
)

// ArchiveSuccessStatus is the archive_status value marking a feature as
// delivered to the DAAC. Matching is exact and case-sensitive.
const ArchiveSuccessStatus = "cnm_r_success"

// IsArchived reports whether a feature has been archived at the DAAC.
func IsArchived(item *stac.Item) bool {
	status, ok := item.Properties["archive_status"].(string)
	return ok && status == ArchiveSuccessStatus
}

// DateCount tallies the features of one processing date.
type DateCount struct {
	Count    int
	Archived int
}

// DateStatus groups features by normalized processing date, counting totals
// and archived features per date.
func DateStatus(items []*stac.Item) (map[string]DateCount, error) {
	status := make(map[string]DateCount)
	for _, item := range items {
		raw, ok := item.Properties["processing_datetime"].(string)
		if !ok {
			return nil, fmt.Errorf("report: feature %s has no processing_datetime", item.Id)
		}
		date, err := dates.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("report: feature %s: %w", item.Id, err)
		}
		count := status[date]
		count.Count++
		if IsArchived(item) {
			count.Archived++
		}
		status[date] = count
	}
	return status, nil
}

// SortedDates returns the keys of a date status map in ascending order.
func SortedDates(status map[string]DateCount) []string {
	keys := make([]string, 0, len(status))
	for date := range status {
		keys = append(keys, date)
	}
	sort.Strings(keys)
	return keys
}

// InconsistentPropertyError reports a feature whose property value differs
// from the value every earlier feature agreed on.
type InconsistentPropertyError struct {
	Property  string
	FeatureID string
	Value     any
	Expected  any
}

func (e *InconsistentPropertyError) Error() string {
	return fmt.Sprintf("report: %s has inconsistent value %v for %s, expected %v",
		e.Property, e.Value, e.FeatureID, e.Expected)
}

// MissingPropertyError reports that no feature defines a required property.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("report: no features define the %s property", e.Property)
}

// ConstantProperty scans all features and returns the property value they
// share. A feature not defining the property is skipped; the first feature
// defining a different value fails the scan. When no feature defines the
// property, required selects between an error and a nil value. The catalog
// is expected to describe a single homogeneous product set per collection
// id; this is a data-integrity guard.
func ConstantProperty(items []*stac.Item, name string, required bool) (any, error) {
	var value any
	for _, item := range items {
		current, ok := item.Properties[name]
		if !ok {
			log.Debug().Msgf("%s does not define %s", item.Id, name)
			continue
		}
		// Property values come from an externally owned JSON document
		// and may hold non-comparable types.
		if value != nil && !reflect.DeepEqual(value, current) {
			return nil, &InconsistentPropertyError{
				Property:  name,
				FeatureID: item.Id,
				Value:     current,
				Expected:  value,
			}
		}
		value = current
	}

	if value == nil && required {
		return nil, &MissingPropertyError{Property: name}
	}
	return value, nil
}
