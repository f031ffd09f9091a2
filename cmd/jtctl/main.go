// Command jtctl is an offline toolbox for Jody-Tama rule variants. It lists
// and draws the card catalog, previews seeded deals, validates variant files
// and reports opening mobility statistics.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

const defaultConfigDir = "configs"

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "jtctl:", err)
		os.Exit(1)
	}
}

func configDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config-dir",
		Usage:   "directory containing rule variant files",
		Value:   defaultConfigDir,
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "jtctl",
		Usage:     "inspect Jody-Tama cards and rule variants",
		Writer:    w,
		ErrWriter: w,
		Commands: []*cli.Command{
			{
				Name:  "cards",
				Usage: "browse the movement card catalog",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list every card with its move diagram",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return listCards(w)
						},
					},
					{
						Name:      "show",
						Usage:     "show one card",
						ArgsUsage: "<name>",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return showCard(w, cmd.Args().First())
						},
					},
				},
			},
			{
				Name:  "deal",
				Usage: "print the starting board and card deal for a seed",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "shuffle seed (random when omitted)",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "rule variant file (.json, .yaml or .yml)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var seed *uint64
					if cmd.IsSet("seed") {
						v := cmd.Int64("seed")
						if v < 0 {
							return fmt.Errorf("seed must not be negative, got %d", v)
						}
						s := uint64(v)
						seed = &s
					}
					return deal(w, cmd.String("config"), seed)
				},
			},
			{
				Name:  "validate",
				Usage: "validate every rule variant file in a directory",
				Flags: []cli.Flag{configDirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return validateDir(w, cmd.String("config-dir"))
				},
			},
			{
				Name:  "analyze",
				Usage: "report opening mobility of each rule variant over many deals",
				Flags: []cli.Flag{
					configDirFlag(),
					&cli.Int64Flag{
						Name:  "deals",
						Usage: "number of seeded deals sampled per variant",
						Value: 200,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					deals := cmd.Int64("deals")
					if deals < 1 {
						return fmt.Errorf("deals must be positive, got %d", deals)
					}
					return analyzeDir(w, cmd.String("config-dir"), int(deals))
				},
			},
		},
	}
}
