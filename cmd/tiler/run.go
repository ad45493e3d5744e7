package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tiler/internal/engine"
	"github.com/samcharles93/tiler/internal/logger"
	"github.com/samcharles93/tiler/internal/tensor"
)

func runCmd() *cli.Command {
	var (
		op      string
		inputs  []string
		fill    string
		workers int64
		show    int64
		asJSON  bool
		av      attrValues
	)

	return &cli.Command{
		Name:      "run",
		Usage:     "Run an operator on generated or literal inputs",
		UsageText: "tiler run --op floor_div --input int32:4=7,-7,7,-7 --input int32:4=2,2,-2,-2",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "op",
				Usage:       "operator name (see 'tiler ops')",
				Required:    true,
				Destination: &op,
			},
			&cli.StringSliceFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input tensor as dtype:dims[=v,v,...]",
				Destination: &inputs,
			},
			&cli.StringFlag{
				Name:        "fill",
				Usage:       "values for inputs given without data (zero, ramp)",
				Value:       "ramp",
				Destination: &fill,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Usage:       "max units executing at once (0 = all)",
				Destination: &workers,
			},
			&cli.Int64Flag{
				Name:        "show",
				Usage:       "output values to print per tensor",
				Value:       16,
				Destination: &show,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print outputs, plan and stats as JSON",
				Destination: &asJSON,
			},
		}, av.flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			plat, _, err := resolvePlatform()
			if err != nil {
				return err
			}
			in, err := buildInputs(inputs, fill)
			if err != nil {
				return err
			}
			at, err := av.attrs()
			if err != nil {
				return err
			}

			eng := engine.New(plat, plannerConfig(), log)
			eng.Executor.Workers = int(workers)
			res, err := eng.Invoke(ctx, engine.Call{Op: op, Inputs: in, Attrs: at})
			if err != nil {
				return err
			}

			if asJSON {
				type output struct {
					DType  string    `json:"dtype"`
					Shape  []int64   `json:"shape"`
					Values []float64 `json:"values"`
				}
				outs := make([]output, len(res.Outputs))
				for i, t := range res.Outputs {
					outs[i] = output{DType: t.DType().String(), Shape: t.Shape(), Values: t.Float64s()}
				}
				return writeIndentedJSON(os.Stdout, map[string]any{
					"op":      op,
					"outputs": outs,
					"plan":    res.Plan,
					"stats":   res.Stats,
				})
			}

			for i, t := range res.Outputs {
				fmt.Printf("output[%d]: %s %s\n", i, t, formatValues(t, int(show)))
			}
			if res.Plan != nil {
				fmt.Printf("plan: %s\n", res.Plan)
				fmt.Printf("tiles: %d across %d units in %s\n", res.Stats.Tiles, len(res.Stats.Units), res.Stats.Elapsed)
			} else {
				fmt.Printf("host scan in %s\n", res.Elapsed)
			}
			return nil
		},
	}
}

func formatValues(t *tensor.Tensor, limit int) string {
	if limit <= 0 {
		return ""
	}
	vals := t.Float64s()
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vals {
		if i == limit {
			fmt.Fprintf(&b, " ... +%d", len(vals)-limit)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', 6, 64))
	}
	b.WriteByte(']')
	return b.String()
}
