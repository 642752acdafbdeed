package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
	"github.com/muses-processing/tropess-mdps-tools/productspec"
	"github.com/muses-processing/tropess-mdps-tools/report"
)

var (
	queryCollectionFlag = &cli.StringFlag{
		Name:    "collection_keyword",
		Aliases: []string{"c"},
		Usage:   "Keyword of the collection group to query, omit to list catalog collection ids",
	}
	sensorSetFlag = &cli.StringFlag{
		Name:    "sensor_set",
		Aliases: []string{"s"},
		Usage:   "Filter by sensor set for the collection group",
	}
	processingDateFlag = &cli.StringFlag{
		Name:    "processing_date",
		Aliases: []string{"d"},
		Usage:   "Calendar date of the data to query",
	}
	dateRangeFlag = &cli.StringSliceFlag{
		Name:    "date_range",
		Aliases: []string{"r"},
		Usage:   "Start and stop dates to query for an overview other than all",
	}
	queryLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limit the number of query results to avoid errors for large results",
		Value: 1000,
	}
	writeStacCatalogFlag = &cli.BoolFlag{
		Name:  "write_stac_catalog",
		Usage: "Write out STAC catalog files for each collection queried",
	}
	writeDeleteMessageFlag = &cli.BoolFlag{
		Name:  "write_delete_message",
		Usage: "Generate a delete message JSON file for sending to the DAAC",
	}
	outputDirFlag = &cli.StringFlag{
		Name:    "output_dir",
		Aliases: []string{"o"},
		Usage:   "Location to write optionally created files",
	}
)

func newQueryCommand() *cli.Command {
	queryFlags := []cli.Flag{
		queryCollectionFlag,
		sensorSetFlag,
		processingDateFlag,
		dateRangeFlag,
		queryLimitFlag,
		writeStacCatalogFlag,
		writeDeleteMessageFlag,
		outputDirFlag,
	}

	return &cli.Command{
		Name:  "query",
		Usage: "Query TROPESS data in MDPS",
		Flags: queryFlags,
		Commands: []*cli.Command{
			{
				Name:  "muses",
				Usage: "Query MUSES products",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "muses_version",
						Usage: "Collection version for the MUSES data being processed",
						Value: "1",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runQuery(ctx, cmd, "MUSES", cmd.String("muses_version"), musesCollectionIDs)
				},
			},
			{
				Name:  "tropess",
				Usage: "Query TROPESS products",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tropess_version",
						Usage: "Granule version for the collection ID being delivered to the DAAC",
						Value: "2",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runQuery(ctx, cmd, "TRPS", cmd.String("tropess_version"), tropessCollectionIDs)
				},
			},
		},
	}
}

// collectionIDsFunc derives the catalog collection ids of one product
// family for a collection group.
type collectionIDsFunc func(t *tool, group *productspec.CollectionGroup, sensorSet *productspec.SensorSet, version string) ([]string, error)

func musesCollectionIDs(t *tool, group *productspec.CollectionGroup, sensorSet *productspec.SensorSet, version string) ([]string, error) {
	shortNames := t.spec.MusesShortNames(group, sensorSet)
	return productspec.CollectionIDs(t.session.Project, t.session.Venue, shortNames, version), nil
}

func tropessCollectionIDs(t *tool, group *productspec.CollectionGroup, sensorSet *productspec.SensorSet, version string) ([]string, error) {
	shortNames, err := t.spec.TropessShortNames(group, sensorSet)
	if err != nil {
		return nil, err
	}
	return productspec.CollectionIDs(t.session.Project, t.session.Venue, shortNames, version), nil
}

// dateFilterFromFlags builds the catalog date filter, rejecting a combined
// single date and range.
func dateFilterFromFlags(cmd *cli.Command) (mdps.DateFilter, error) {
	processingDate := cmd.String(processingDateFlag.Name)
	dateRange := cmd.StringSlice(dateRangeFlag.Name)

	switch {
	case processingDate != "" && len(dateRange) > 0:
		return mdps.DateFilter{}, fmt.Errorf("flags --processing_date and --date_range are mutually exclusive")
	case processingDate != "":
		return mdps.OnDate(processingDate), nil
	case len(dateRange) == 2:
		return mdps.InRange(dateRange[0], dateRange[1]), nil
	case len(dateRange) > 0:
		return mdps.DateFilter{}, fmt.Errorf("flag --date_range takes exactly two dates, got %d", len(dateRange))
	default:
		return mdps.DateFilter{}, nil
	}
}

func runQuery(ctx context.Context, cmd *cli.Command, prefix, version string, collectionIDs collectionIDsFunc) error {
	t, err := newTool(cmd)
	if err != nil {
		return err
	}
	client, err := t.client()
	if err != nil {
		return err
	}

	keyword := cmd.String(queryCollectionFlag.Name)
	if keyword == "" {
		return listCatalogCollections(ctx, t, client, prefix)
	}

	group, err := t.spec.Group(keyword)
	if err != nil {
		return err
	}

	var sensorSet *productspec.SensorSet
	if ref := cmd.String(sensorSetFlag.Name); ref != "" {
		sensorSet, err = t.spec.ResolveSensorSet(group, ref)
		if err != nil {
			return err
		}
	}

	ids, err := collectionIDs(t, group, sensorSet, version)
	if err != nil {
		return err
	}

	filter, err := dateFilterFromFlags(cmd)
	if err != nil {
		return err
	}

	results, err := client.Catalog().QueryAll(ctx, ids, filter, int(cmd.Int(queryLimitFlag.Name)))
	if err != nil {
		return err
	}

	if err := report.DisplaySummary(os.Stdout, results, cmd.String(processingDateFlag.Name)); err != nil {
		return err
	}

	outputDir := cmd.String(outputDirFlag.Name)
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}
	}

	if cmd.Bool(writeStacCatalogFlag.Name) {
		if outputDir == "" {
			t.log.Warnf("Can not write STAC catalog files because output directory was not defined")
		} else {
			written, err := report.WriteSnapshots(results, outputDir)
			if err != nil {
				return err
			}
			for _, path := range written {
				t.log.Infof("Wrote STAC catalog to: %s", path)
			}
		}
	}

	if cmd.Bool(writeDeleteMessageFlag.Name) {
		if outputDir == "" {
			t.log.Warnf("Can not write delete message files because output directory was not defined")
		} else {
			written, err := report.WriteDeleteMessages(results, version, outputDir, time.Now())
			if err != nil {
				return err
			}
			for _, path := range written {
				t.log.Infof("Wrote delete message to: %s", path)
			}
		}
	}
	return nil
}

// listCatalogCollections prints every catalog collection id whose short
// name component carries the family prefix.
func listCatalogCollections(ctx context.Context, t *tool, client *mdps.Client, prefix string) error {
	ids, err := client.Collections().List(ctx, 0)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if strings.Contains(id, ":"+prefix) {
			t.log.Infof("* %s", id)
		}
	}
	return nil
}
