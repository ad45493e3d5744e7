package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tiler/internal/engine"
	"github.com/samcharles93/tiler/internal/logger"
	"github.com/samcharles93/tiler/internal/tiling"
	"github.com/samcharles93/tiler/pkg/planblob"
)

func planCmd() *cli.Command {
	var (
		op           string
		inputs       []string
		out          string
		asJSON       bool
		elements     int64
		elementBytes int64
		workingSet   int64
		allowEmpty   bool
		av           attrValues
	)

	return &cli.Command{
		Name:      "plan",
		Usage:     "Compute the tiling plan for an operator or a raw request",
		UsageText: "tiler plan --op sqrt --input float32:4096x1024 [--out plan.tpl]\ntiler plan --elements 1009 --element-bytes 4 --working-set 3",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "op",
				Usage:       "operator name (see 'tiler ops')",
				Destination: &op,
			},
			&cli.StringSliceFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input tensor as dtype:dims, e.g. float16:8x1024",
				Destination: &inputs,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write the plan blob to this path",
				Destination: &out,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the plan as JSON",
				Destination: &asJSON,
			},
			&cli.Int64Flag{
				Name:        "elements",
				Usage:       "raw request: total element count",
				Destination: &elements,
			},
			&cli.Int64Flag{
				Name:        "element-bytes",
				Usage:       "raw request: element width in bytes",
				Value:       4,
				Destination: &elementBytes,
			},
			&cli.Int64Flag{
				Name:        "working-set",
				Usage:       "raw request: scratch buffers per tile",
				Value:       3,
				Destination: &workingSet,
			},
			&cli.BoolFlag{
				Name:        "allow-empty",
				Usage:       "raw request: plan zero-element tensors",
				Destination: &allowEmpty,
			},
		}, av.flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			plat, _, err := resolvePlatform()
			if err != nil {
				return err
			}

			var p *tiling.Plan
			switch {
			case op != "":
				in, err := buildInputs(inputs, "zero")
				if err != nil {
					return err
				}
				at, err := av.attrs()
				if err != nil {
					return err
				}
				eng := engine.New(plat, plannerConfig(), log)
				p, _, err = eng.PlanOnly(engine.Call{Op: op, Inputs: in, Attrs: at})
				if err != nil {
					return err
				}
			case cmd.IsSet("elements"):
				p, err = tiling.NewPlanner(plannerConfig(), log).Plan(tiling.Request{
					TotalElements: elements,
					ElementBytes:  int(elementBytes),
					Units:         plat.AvailableUnits(),
					BufferBytes:   plat.BufferCapacityBytes(),
					WorkingSet:    int(workingSet),
					AllowEmpty:    allowEmpty,
				})
				if err != nil {
					return err
				}
			default:
				return errors.New("plan: --op or --elements is required")
			}

			if out != "" {
				if err := planblob.WriteFile(out, p); err != nil {
					return err
				}
				log.Info("plan written", "path", out, "bytes", planblob.Size)
			}
			if asJSON {
				return writeIndentedJSON(os.Stdout, p)
			}
			fmt.Printf("platform:       %s\n", plat)
			printPlan(os.Stdout, p)
			return nil
		},
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// printPlan writes a human-readable summary followed by one row per unit.
func printPlan(w io.Writer, p *tiling.Plan) {
	_, _ = fmt.Fprintf(w, "total elements: %d (%d B each, %d blocks)\n", p.TotalElements, p.ElementBytes, p.TotalBlocks)
	_, _ = fmt.Fprintf(w, "units:          %d (%d big)\n", p.UnitCount, p.BigUnits)
	_, _ = fmt.Fprintf(w, "tile:           %d elements (%d blocks)\n", p.TileElements, p.BlocksPerTile)
	_, _ = fmt.Fprintf(w, "padding:        %d elements\n", p.Padding)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "unit\toffset\telements\tvalid\ttiles\ttail\t")
	for _, r := range p.Units() {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t\n", r.Unit, r.Offset, r.Elements, r.Valid, r.Tiles, r.Tail)
	}
	_ = tw.Flush()
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a plan blob written by 'tiler plan --out'",
		ArgsUsage: "<plan.tpl>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the plan as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("inspect: blob path is required")
			}
			p, err := planblob.ReadFile(path)
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndentedJSON(os.Stdout, p)
			}
			fmt.Printf("blob:           %s (%d B)\n", path, planblob.Size)
			printPlan(os.Stdout, p)
			return nil
		},
	}
}
