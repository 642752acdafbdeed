package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/muses-processing/tropess-mdps-tools/airflow"
	"github.com/muses-processing/tropess-mdps-tools/deploy"
	"github.com/muses-processing/tropess-mdps-tools/mdps"
	"github.com/muses-processing/tropess-mdps-tools/productspec"
)

// inputQueryLimit bounds the catalog query for input data, large enough to
// never truncate a single processing date.
const inputQueryLimit = 10000

var (
	triggerFlag = &cli.BoolFlag{
		Name:  "trigger",
		Usage: "Unless specified the DAG is not triggered, instead a dry run is done",
	}
	deploymentDirFlag = &cli.StringFlag{
		Name:  "deployment_dir",
		Usage: "Location where CWL artifacts are deployed",
		Value: ".",
	}
)

func newTriggerCommand() *cli.Command {
	return &cli.Command{
		Name:  "trigger",
		Usage: "Trigger TROPESS processing in MDPS",
		Flags: []cli.Flag{triggerFlag, deploymentDirFlag},
		Commands: []*cli.Command{
			{
				Name:  "data_ingest",
				Usage: "Schedule ingestion of data from the TROPESS S3 bucket into MDPS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input_path",
						Aliases:  []string{"i"},
						Usage:    "Path under the base S3 path with files to be ingested",
						Required: true,
					},
					collectionKeywordFlag,
					&cli.StringFlag{
						Name:    "base_path",
						Aliases: []string{"b"},
						Usage:   "Base S3 URL path where data is sourced from",
					},
					&cli.StringFlag{
						Name:    "version",
						Aliases: []string{"v"},
						Usage:   "Collection version for the data being ingested",
					},
				},
				Action: dataIngestAction,
			},
			{
				Name:  "py_tropess",
				Usage: "Initiate processing of data through py-tropess",
				Flags: []cli.Flag{
					collectionKeywordFlag,
					&cli.StringFlag{
						Name:     "date",
						Aliases:  []string{"d"},
						Usage:    "Calendar date for the MUSES data to process into TROPESS products",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "product",
						Aliases:  []string{"p"},
						Usage:    "The type of TROPESS product to create, ie summary/standard/full",
						Required: true,
					},
					sensorSetFlag,
					&cli.StringFlag{
						Name:  "species",
						Usage: "Comma separated list of species to generate other than all valid ones",
					},
					musesVersionFlag,
					&cli.StringFlag{
						Name:  "tropess_version",
						Usage: "Granule version for the collection ID being delivered to the DAAC",
					},
				},
				Action: pyTropessAction,
			},
		},
	}
}

// stringParam reads a string value from a job parameter file, empty when
// absent or not a string.
func stringParam(params map[string]any, key string) string {
	value, _ := params[key].(string)
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// triggerDAG resolves the Airflow endpoint for the session's venue and
// submits (or dry-runs) the DAG run.
func triggerDAG(ctx context.Context, t *tool, req airflow.RunRequest, commit bool) error {
	apiURL, err := airflow.ResolveAPIURL(ctx, t.session.Project, t.session.Venue)
	if err != nil {
		return err
	}

	client, err := airflow.NewClient(apiURL,
		airflow.WithDAGName(airflow.DAGName()),
		airflow.WithTokenProvider(mdps.EnvToken(mdps.EnvAuthToken)),
		airflow.WithLogger(t.log),
	)
	if err != nil {
		return err
	}
	return client.Trigger(ctx, req, commit)
}

func dataIngestAction(ctx context.Context, cmd *cli.Command) error {
	t, err := newTool(cmd)
	if err != nil {
		return err
	}

	keyword := cmd.String(collectionKeywordFlag.Name)
	if _, err := t.spec.Group(keyword); err != nil {
		return err
	}

	deployDir := cmd.String(deploymentDirFlag.Name)
	params, err := deploy.ReadJobParameters(deployDir, "data_ingest")
	if err != nil {
		return err
	}

	inputPath := cmd.String("input_path")
	basePath := firstNonEmpty(cmd.String("base_path"), stringParam(params, "input_data_base_path"))
	version := firstNonEmpty(cmd.String("version"), stringParam(params, "collection_version"))
	if basePath == "" {
		return fmt.Errorf("no base S3 path given and none defined in the job parameter file")
	}
	if version == "" {
		return fmt.Errorf("no collection version given and none defined in the job parameter file")
	}

	s3Client, err := deploy.NewS3Client(ctx)
	if err != nil {
		return err
	}
	if _, err := deploy.VerifyIngestPath(ctx, s3Client, basePath, inputPath, t.log); err != nil {
		return err
	}

	artifacts := deploy.NewArtifacts(deployDir, deploy.WithLogger(t.log))
	workflowURL, dockerVersion, err := artifacts.WorkflowURL(ctx, "data_ingest", t.session.Project, t.session.Venue)
	if err != nil {
		return err
	}
	stacURL, err := artifacts.StageInURL(ctx, "data_ingest")
	if err != nil {
		return err
	}

	req := airflow.RunRequest{
		RunID: fmt.Sprintf("TROPESS-data_ingest_%s-%s:%s",
			dockerVersion, keyword, strings.ReplaceAll(inputPath, "/", "-")),
		ProcessArgs: map[string]any{
			"input_data_ingest_path":   inputPath,
			"collection_group_keyword": keyword,
			"input_data_base_path":     basePath,
			"collection_version":       version,
		},
		ProcessWorkflow: workflowURL,
		StacJSON:        stacURL,
		UseECR:          true,
		UseStacAuth:     false,
	}
	return triggerDAG(ctx, t, req, cmd.Bool(triggerFlag.Name))
}

// queryInputData locates the MUSES granules to process and returns the
// catalog link handed to the DAG as its stage-in document.
func queryInputData(ctx context.Context, t *tool, group *productspec.CollectionGroup, sensorSet *productspec.SensorSet, musesVersion, processingDate string) (string, error) {
	musesShortNames := t.spec.MusesShortNames(group, sensorSet)
	if len(musesShortNames) > 1 {
		return "", fmt.Errorf("multiple sensor sets for the %s collection group, add --sensor_set to filter", group.Keyword)
	}
	collectionID := productspec.CollectionID(t.session.Project, t.session.Venue, musesShortNames[0], musesVersion)

	client, err := t.client()
	if err != nil {
		return "", err
	}
	result, err := client.Catalog().Query(ctx, collectionID, mdps.OnDate(processingDate), inputQueryLimit)
	if err != nil {
		return "", err
	}

	var ncFiles []string
	for _, item := range result.Items {
		for name := range item.Assets {
			if strings.HasSuffix(name, ".nc") {
				ncFiles = append(ncFiles, name)
			}
		}
	}
	if len(ncFiles) == 0 {
		return "", fmt.Errorf("found 0 files to process in %s", collectionID)
	}

	t.log.Infof("Found %d files to process:", len(ncFiles))
	for _, name := range ncFiles {
		t.log.Infof(" - %s", name)
	}

	if len(result.Links) == 0 {
		return "", fmt.Errorf("catalog result for %s carries no links", collectionID)
	}
	return result.Links[0].Href, nil
}

func pyTropessAction(ctx context.Context, cmd *cli.Command) error {
	t, err := newTool(cmd)
	if err != nil {
		return err
	}

	group, err := t.spec.Group(cmd.String(collectionKeywordFlag.Name))
	if err != nil {
		return err
	}

	sensorRef := cmd.String(sensorSetFlag.Name)
	var sensorSet *productspec.SensorSet
	if sensorRef != "" {
		sensorSet, err = t.spec.ResolveSensorSet(group, sensorRef)
		if err != nil {
			return err
		}
	}

	deployDir := cmd.String(deploymentDirFlag.Name)
	params, err := deploy.ReadJobParameters(deployDir, "py_tropess")
	if err != nil {
		return err
	}

	processingDate := cmd.String("date")
	productType := cmd.String("product")
	granuleVersion := firstNonEmpty(cmd.String("tropess_version"), stringParam(params, "granule_version"))
	if granuleVersion == "" {
		return fmt.Errorf("no granule version given and none defined in the job parameter file")
	}

	stacJSON, err := queryInputData(ctx, t, group, sensorSet, cmd.String(musesVersionFlag.Name), processingDate)
	if err != nil {
		return err
	}

	processArgs := map[string]any{
		"product_type":    productType,
		"granule_version": granuleVersion,
	}
	species := cmd.String("species")
	if species != "" && species != "null" {
		processArgs["processing_species"] = species
	}

	artifacts := deploy.NewArtifacts(deployDir, deploy.WithLogger(t.log))
	workflowURL, dockerVersion, err := artifacts.WorkflowURL(ctx, "py_tropess", t.session.Project, t.session.Venue)
	if err != nil {
		return err
	}

	runID := fmt.Sprintf("TROPESS-py_tropess_%s-%s-%s-%s-%s",
		dockerVersion, group.Keyword, sensorRef, processingDate, productType)
	if species != "" && species != "null" {
		runID += "-" + strings.ReplaceAll(species, " ", "")
	}

	req := airflow.RunRequest{
		RunID:           runID,
		ProcessArgs:     processArgs,
		ProcessWorkflow: workflowURL,
		StacJSON:        stacJSON,
		UseECR:          true,
		UseStacAuth:     true,
	}
	return triggerDAG(ctx, t, req, cmd.Bool(triggerFlag.Name))
}
