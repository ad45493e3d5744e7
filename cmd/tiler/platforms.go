package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/platform"
)

func platformsCmd() *cli.Command {
	return &cli.Command{
		Name:  "platforms",
		Usage: "List platform profiles",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, reg, err := resolvePlatform()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tUNITS\tBUFFER\tDESCRIPTION")
			for _, p := range reg.List() {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", p.Name, p.Units, p.BufferBytes, p.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if feats := platform.Features(); len(feats) > 0 {
				fmt.Printf("\nhost cpu features: %s\n", strings.Join(feats, " "))
			}
			return nil
		},
	}
}

func opsCmd() *cli.Command {
	var verbose bool

	return &cli.Command{
		Name:  "ops",
		Usage: "List available operators",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "show accepted dtypes",
				Destination: &verbose,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tKIND\tARITY\tDESCRIPTION")
			for _, s := range ops.All() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.Kind, s.Arity, s.Doc)
				if verbose {
					names := make([]string, len(s.DTypes))
					for i, dt := range s.DTypes {
						names[i] = dt.String()
					}
					_, _ = fmt.Fprintf(tw, "\t\t\tdtypes: %s\n", strings.Join(names, ", "))
				}
			}
			return tw.Flush()
		},
	}
}
