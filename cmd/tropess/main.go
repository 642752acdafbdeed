package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/muses-processing/tropess-mdps-tools/mdps"
	"github.com/muses-processing/tropess-mdps-tools/productspec"
)

var (
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable verbose debug logging",
	}
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "Load environment variables from this file before reading the platform configuration",
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "HTTP client timeout for data services calls (e.g. 30s, 1m)",
		Value:   30 * time.Second,
	}
)

func main() {
	cmd := &cli.Command{
		Name:  "tropess",
		Usage: "Operate TROPESS data processing in MDPS",
		Flags: []cli.Flag{debugFlag, envFileFlag, timeoutFlag},
		Commands: []*cli.Command{
			newInitCommand(),
			newQueryCommand(),
			newTriggerCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// tool bundles the state every subcommand needs: the product
// specification, the platform session, and the logger.
type tool struct {
	spec    *productspec.Config
	session *mdps.Session
	log     logAdapter
	timeout time.Duration
}

func newTool(cmd *cli.Command) (*tool, error) {
	log := newLogger(cmd.Bool(debugFlag.Name))

	spec, err := productspec.Default()
	if err != nil {
		return nil, err
	}

	session, err := mdps.NewSession(cmd.String(envFileFlag.Name))
	if err != nil {
		return nil, err
	}
	log.Debugf("session: %s", session)

	return &tool{
		spec:    spec,
		session: session,
		log:     log,
		timeout: cmd.Duration(timeoutFlag.Name),
	}, nil
}

func (t *tool) client() (*mdps.Client, error) {
	return t.session.Client(
		mdps.WithLogger(t.log),
		mdps.WithTimeout(t.timeout),
	)
}
