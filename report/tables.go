package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/muses-processing/tropess-mdps-tools/dates"
	"github.com/muses-processing/tropess-mdps-tools/mdps"
)

// DisplaySummary prints a summary for each query result: a per-collection
// overview followed by either a per-date table (no date given) or a
// per-feature detail table (single date given). Collections with no
// features print a one line notice instead.
func DisplaySummary(w io.Writer, results []*mdps.QueryResult, processingDate string) error {
	for _, result := range results {
		if result.Empty() {
			fmt.Fprintf(w, "%s is empty.\n", result.CollectionID)
			continue
		}

		fmt.Fprintln(w)
		if err := displayOverview(w, result, processingDate); err != nil {
			return err
		}

		if processingDate == "" {
			if err := displayDates(w, result); err != nil {
				return err
			}
		} else if err := displayDateDetails(w, result); err != nil {
			return err
		}
	}
	return nil
}

func displayOverview(w io.Writer, result *mdps.QueryResult, processingDate string) error {
	items := result.Items

	productStage, err := ConstantProperty(items, "product_stage", true)
	if err != nil {
		return err
	}

	rows := [][2]string{
		{"Collection ID", result.CollectionID},
	}
	for _, prop := range []struct{ label, name string }{
		{"Collection Group", "collection_group"},
		{"Sensor Set", "sensor_set"},
	} {
		value, err := ConstantProperty(items, prop.name, true)
		if err != nil {
			return err
		}
		rows = append(rows, [2]string{prop.label, fmt.Sprint(value)})
	}
	rows = append(rows, [2]string{"Product Stage", fmt.Sprint(productStage)})

	// MUSES intermediates carry no per-product naming metadata.
	if productStage != "MUSES" {
		for _, prop := range []struct{ label, name string }{
			{"Product Type", "product_type"},
			{"Short Name", "short_name"},
			{"Long Name", "long_name"},
		} {
			value, err := ConstantProperty(items, prop.name, true)
			if err != nil {
				return err
			}
			rows = append(rows, [2]string{prop.label, fmt.Sprint(value)})
		}
	}

	version, err := ConstantProperty(items, "product_version", true)
	if err != nil {
		return err
	}
	rows = append(rows, [2]string{"Product Version", fmt.Sprint(version)})

	if processingDate != "" {
		date, err := dates.Normalize(processingDate)
		if err != nil {
			return err
		}
		rows = append(rows, [2]string{"Date", date})
	}

	table := tablewriter.NewTable(w)
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	return table.Render()
}

func displayDates(w io.Writer, result *mdps.QueryResult) error {
	status, err := DateStatus(result.Items)
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(w)
	table.Header("Date", "Num Species", "Num Archived")
	for _, date := range SortedDates(status) {
		count := status[date]
		if err := table.Append(date, fmt.Sprint(count.Count), fmt.Sprint(count.Archived)); err != nil {
			return err
		}
	}
	return table.Render()
}

func displayDateDetails(w io.Writer, result *mdps.QueryResult) error {
	table := tablewriter.NewTable(w)
	table.Header("ID", "Species", "Num Files", "Is Archived")
	for _, item := range result.Items {
		species, _ := item.Properties["species"].(string)
		if err := table.Append(
			ProductID(item.Id, result.CollectionID),
			species,
			fmt.Sprint(len(item.Assets)),
			fmt.Sprint(IsArchived(item)),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// ProductID strips the collection id prefix from a feature id, leaving the
// granule-level product identifier.
func ProductID(featureID, collectionID string) string {
	return strings.TrimLeft(strings.TrimPrefix(featureID, collectionID), ":")
}
