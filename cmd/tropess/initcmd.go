package main

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/urfave/cli/v3"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
	"github.com/muses-processing/tropess-mdps-tools/productspec"
)

var (
	doUpdateFlag = &cli.BoolFlag{
		Name:    "do_update",
		Aliases: []string{"u"},
		Usage:   "Perform data services update instead of performing a dry run",
	}
	collectionKeywordFlag = &cli.StringFlag{
		Name:     "collection_keyword",
		Aliases:  []string{"c"},
		Usage:    "Keyword of the collection group representing the data being ingested",
		Required: true,
	}
	tropessVersionFlag = &cli.StringFlag{
		Name:     "tropess_version",
		Aliases:  []string{"v"},
		Usage:    "Granule version for the collection ID being delivered to the DAAC",
		Required: true,
	}
	musesVersionFlag = &cli.StringFlag{
		Name:  "muses_version",
		Usage: "Collection version for the MUSES data being processed",
		Value: "1",
	}
)

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize MDPS data services for a TROPESS collection group",
		Flags: []cli.Flag{doUpdateFlag},
		Commands: []*cli.Command{
			{
				Name:  "register_collection",
				Usage: "Register TROPESS collection IDs with MDPS data services",
				Flags: []cli.Flag{
					collectionKeywordFlag,
					tropessVersionFlag,
					musesVersionFlag,
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check that generated MDPS collection ids are registered",
					},
				},
				Action: registerCollectionAction,
			},
			{
				Name:   "custom_metadata",
				Usage:  "Register custom metadata needed by TROPESS products",
				Action: customMetadataAction,
			},
			{
				Name:  "register_archive",
				Usage: "Register TROPESS collection IDs to be delivered to the DAAC for archiving",
				Flags: []cli.Flag{
					collectionKeywordFlag,
					tropessVersionFlag,
					&cli.StringFlag{
						Name:     "sns_arn",
						Aliases:  []string{"a"},
						Usage:    "DAAC SNS topic ARN where delivery messages are sent",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "role_arn",
						Aliases:  []string{"r"},
						Usage:    "Assume IAM roles from GES DISC Cumulus ARN",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "role_session_name",
						Aliases: []string{"s"},
						Usage:   "Assume IAM roles from GES DISC session name",
						Value:   "tropess_request",
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   "Defines the data source for the Cumulus system",
						Value:   "tropess_cloud",
					},
					&cli.BoolFlag{
						Name:  "delete",
						Usage: "Delete DAAC archive configs before creating",
					},
				},
				Action: registerArchiveAction,
			},
		},
	}
}

// collectionIDSets derives the TROPESS and MUSES collection identifiers of
// one collection group, each at its own collection version.
func collectionIDSets(t *tool, group *productspec.CollectionGroup, granuleVersion, musesVersion string) (tropess, muses []string, err error) {
	tropessShortNames, err := t.spec.TropessShortNames(group, nil)
	if err != nil {
		return nil, nil, err
	}
	tropess = productspec.CollectionIDs(t.session.Project, t.session.Venue, tropessShortNames, granuleVersion)

	musesShortNames := t.spec.MusesShortNames(group, nil)
	muses = productspec.CollectionIDs(t.session.Project, t.session.Venue, musesShortNames, musesVersion)
	return tropess, muses, nil
}

func registerCollectionAction(ctx context.Context, cmd *cli.Command) error {
	t, err := newTool(cmd)
	if err != nil {
		return err
	}

	group, err := t.spec.Group(cmd.String(collectionKeywordFlag.Name))
	if err != nil {
		return err
	}

	tropessIDs, musesIDs, err := collectionIDSets(t, group,
		cmd.String(tropessVersionFlag.Name), cmd.String(musesVersionFlag.Name))
	if err != nil {
		return err
	}
	collectionIDs := append(tropessIDs, musesIDs...)

	client, err := t.client()
	if err != nil {
		return err
	}

	if cmd.Bool(doUpdateFlag.Name) {
		for _, id := range collectionIDs {
			t.log.Infof("Registering collection id: %s", id)
		}
		if err := client.Collections().RegisterAll(ctx, collectionIDs, mdps.RegisterOptions{}); err != nil {
			return err
		}
		t.log.Infof("%d collection ids requested", len(collectionIDs))
	} else {
		t.log.Infof("Generated collection ids for collection group %s:", group.Keyword)
		for _, id := range collectionIDs {
			t.log.Infof("  %s", id)
		}
		t.log.Infof("Dry run only, pass --do_update to register")
	}

	if cmd.Bool("check") {
		status, err := client.Collections().Registered(ctx, collectionIDs)
		if err != nil {
			return err
		}
		for _, id := range collectionIDs {
			if status[id] {
				t.log.Infof("%s created successfully", id)
			} else {
				t.log.Errorf("Collection id %s is not registered with MDPS", id)
			}
		}
	}
	return nil
}

func customMetadataAction(ctx context.Context, cmd *cli.Command) error {
	t, err := newTool(cmd)
	if err != nil {
		return err
	}
	client, err := t.client()
	if err != nil {
		return err
	}

	t.log.Infof("Querying MDPS data services for existing custom metadata")
	existing, err := client.Metadata().Existing(ctx)
	if err != nil {
		return err
	}

	// Previously defined fields must be carried into the new definition,
	// the platform replaces the whole set on commit.
	merged := make(map[string]mdps.FieldDefinition, len(existing))
	maps.Copy(merged, existing)
	maps.Copy(merged, mdps.DefaultMetadataDefinition())

	encoded, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	t.log.Infof("Custom metadata fields definition:\n%s", encoded)

	if maps.Equal(merged, existing) {
		t.log.Infof("Proposed fields match existing fields")
	}

	if !cmd.Bool(doUpdateFlag.Name) {
		t.log.Infof("No custom metadata committed, dry run only")
		return nil
	}

	t.log.Infof("Committing custom metadata definition")
	return client.Metadata().Define(ctx, merged)
}

func registerArchiveAction(ctx context.Context, cmd *cli.Command) error {
	t, err := newTool(cmd)
	if err != nil {
		return err
	}

	group, err := t.spec.Group(cmd.String(collectionKeywordFlag.Name))
	if err != nil {
		return err
	}

	granuleVersion := cmd.String(tropessVersionFlag.Name)
	shortNames, err := t.spec.TropessShortNames(group, nil)
	if err != nil {
		return err
	}
	collectionIDs := productspec.CollectionIDs(t.session.Project, t.session.Venue, shortNames, granuleVersion)

	client, err := t.client()
	if err != nil {
		return err
	}
	archive := client.Archive()

	if cmd.Bool("delete") {
		for i, daacID := range shortNames {
			t.log.Infof("Deleting DAAC archive id: %s from %s", daacID, collectionIDs[i])
			if err := archive.Delete(ctx, collectionIDs[i], daacID); err != nil {
				return err
			}
		}
	}

	doUpdate := cmd.Bool(doUpdateFlag.Name)
	for i, daacID := range shortNames {
		cfg := mdps.ArchiveConfig{
			DAACCollectionID:    daacID,
			DAACDataVersion:     granuleVersion,
			DAACSNSTopicARN:     cmd.String("sns_arn"),
			DAACProvider:        cmd.String("provider"),
			DAACRoleARN:         cmd.String("role_arn"),
			DAACRoleSessionName: cmd.String("role_session_name"),
		}

		encoded, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		t.log.Infof("Archive configuration for %s:\n%s", collectionIDs[i], encoded)

		if !doUpdate {
			t.log.Infof("No archive configuration committed, dry run only")
			continue
		}

		t.log.Infof("Registering DAAC archive id: %s to %s", daacID, collectionIDs[i])
		if err := archive.Add(ctx, collectionIDs[i], cfg); err != nil {
			return err
		}
	}

	for _, collectionID := range collectionIDs {
		cfg, err := archive.Get(ctx, collectionID)
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		t.log.Infof("Archive config for %s:\n%s", collectionID, encoded)
	}
	return nil
}
