package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"taskninja/internal/aggregate"
	"taskninja/internal/chart"
	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
	"taskninja/internal/report"
	"taskninja/internal/trend"
)

func datasetCmd() *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Load, convert, clean, and inspect CSV, Excel, and JSON tables",
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Convert between formats by extension",
				ArgsUsage: "<in> <out>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "bom", Usage: "Write a UTF-8 BOM on CSV output (Excel compatibility)"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected input and output paths")
					}
					ds, err := dataset.Load(args[0])
					if err != nil {
						return err
					}
					if err := dataset.Write(ds, args[1], dataset.WriteOptions{BOM: cmd.Bool("bom")}); err != nil {
						return err
					}
					fmt.Printf("Wrote %d rows to %s\n", len(ds.Rows), args[1])
					return nil
				}),
			},
			{
				Name:      "clean",
				Usage:     "Deduplicate, fill numeric blanks, normalize dates, drop incomplete rows",
				ArgsUsage: "<in> <out>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dates", Usage: "Comma-separated date columns to normalize"},
					&cli.StringFlag{Name: "required", Usage: "Comma-separated columns that must not be blank"},
					&cli.FloatFlag{Name: "fill", Usage: "Default for blank numeric cells", Value: 0},
					&cli.StringFlag{Name: "numeric", Usage: "Comma-separated numeric columns to fill"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected input and output paths")
					}
					ds, err := dataset.Load(args[0])
					if err != nil {
						return err
					}
					opts := dataset.CleanOptions{
						DateColumns: splitList(cmd.String("dates")),
						Required:    splitList(cmd.String("required")),
					}
					if numeric := splitList(cmd.String("numeric")); len(numeric) > 0 {
						opts.FillNumeric = make(map[string]float64, len(numeric))
						for _, col := range numeric {
							opts.FillNumeric[col] = cmd.Float("fill")
						}
					}
					changes := dataset.Clean(ds, opts)
					if err := dataset.Write(ds, args[1], dataset.WriteOptions{}); err != nil {
						return err
					}
					fmt.Printf("Cleaned %s: %d duplicates dropped, %d cells filled, %d dates normalized, %d rows dropped\n",
						args[0], changes.DuplicatesDropped, changes.CellsFilled, changes.DatesCoerced, changes.RowsDropped)
					return nil
				}),
			},
			{
				Name:      "info",
				Usage:     "Describe columns and sizes",
				ArgsUsage: "<in>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					ds, err := dataset.Load(cmd.Args().First())
					if err != nil {
						return err
					}
					info := dataset.Describe(ds)
					fmt.Printf("%d rows, %d columns\n", info.Rows, info.Columns)
					for _, col := range ds.Columns {
						fmt.Printf("  %-20s %-6s (%d blank)\n", col, info.Kinds[col], info.Missing[col])
					}
					return nil
				}),
			},
			{
				Name:      "sample",
				Usage:     "Print the first and last rows",
				ArgsUsage: "<in>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "Rows from each end", Value: 5},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					ds, err := dataset.Load(cmd.Args().First())
					if err != nil {
						return err
					}
					n := int(cmd.Int("n"))
					printTable(dataset.Head(ds, n))
					if len(ds.Rows) > 2*n {
						fmt.Println("...")
						printTable(dataset.Tail(ds, n))
					}
					return nil
				}),
			},
		},
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printTable(ds *dataset.Dataset) {
	fmt.Println(strings.Join(ds.Columns, " | "))
	for _, row := range ds.Rows {
		cells := make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			cells[i] = row[col]
		}
		fmt.Println(strings.Join(cells, " | "))
	}
}

func aggregateCmd() *cli.Command {
	return &cli.Command{
		Name:      "aggregate",
		Usage:     "Group a table and sum a value column",
		ArgsUsage: "<in>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Usage: "Comma-separated group columns", Required: true},
			&cli.StringFlag{Name: "value", Usage: "Numeric value column", Required: true},
			&cli.StringFlag{Name: "out", Usage: "Write the summary workbook here (.xlsx)"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			ds, err := dataset.Load(cmd.Args().First())
			if err != nil {
				return err
			}
			groups := splitList(cmd.String("group"))
			summary, err := aggregate.By(ds, cmd.String("value"), groups...)
			if err != nil {
				return err
			}
			printTable(summary.Dataset())

			if out := cmd.String("out"); out != "" {
				sheets := []aggregate.Sheet{
					{Name: "Raw Data", Data: ds},
					{Name: "Summary", Data: summary.Dataset()},
				}
				if err := aggregate.WriteWorkbook(out, sheets); err != nil {
					return err
				}
				fmt.Printf("Wrote workbook %s\n", out)
			}
			return nil
		}),
	}
}

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Generate a styled Excel report with a summary sheet",
		ArgsUsage: "<in>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Usage: "Group column", Required: true},
			&cli.StringFlag{Name: "value", Usage: "Numeric value column", Required: true},
			&cli.StringFlag{Name: "out", Usage: "Output .xlsx path (default under the reports dir)"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			ds, err := dataset.Load(cmd.Args().First())
			if err != nil {
				return err
			}
			out := cmd.String("out")
			if out == "" {
				out = a.paths.GetReportPath("report.xlsx")
			}
			summary, err := report.Generate(ds, out, report.Options{
				GroupColumn: cmd.String("group"),
				ValueColumn: cmd.String("value"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d groups)\n", out, len(summary.Groups))
			return nil
		}),
	}
}

func trendCmd() *cli.Command {
	return &cli.Command{
		Name:      "trend",
		Usage:     "Resample dated records and fit a trend",
		ArgsUsage: "<in>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Date column", Required: true},
			&cli.StringFlag{Name: "value", Usage: "Numeric value column", Required: true},
			&cli.StringFlag{Name: "freq", Usage: "Bucket size: D, W, M, or Q", Value: "M"},
			&cli.IntFlag{Name: "window", Usage: "Rolling mean window", Value: 3},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			freq, err := trend.ParseFrequency(cmd.String("freq"))
			if err != nil {
				return err
			}
			ds, err := dataset.Load(cmd.Args().First())
			if err != nil {
				return err
			}
			series, err := trend.Resample(ds, cmd.String("date"), cmd.String("value"), freq)
			if err != nil {
				return err
			}
			window := int(cmd.Int("window"))
			means, ok := trend.RollingMean(series.Values(), window)
			fit := trend.FitLine(series.Values())
			labels := series.Labels()

			fmt.Printf("%-10s %12s %12s %12s\n", "period", "value", fmt.Sprintf("avg(%d)", window), "trend")
			for i, p := range series.Points {
				avg := "-"
				if ok[i] {
					avg = fmt.Sprintf("%.2f", means[i])
				}
				fmt.Printf("%-10s %12.2f %12s %12.2f\n", labels[i], p.Value, avg, fit[i])
			}
			return nil
		}),
	}
}

func chartCmd() *cli.Command {
	return &cli.Command{
		Name:      "chart",
		Usage:     "Render an HTML chart from a table",
		ArgsUsage: "<in>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Usage: "line, bar, pie, or heatmap", Value: "line"},
			&cli.StringFlag{Name: "group", Usage: "Group column (bar, pie)"},
			&cli.StringFlag{Name: "date", Usage: "Date column (line, heatmap)"},
			&cli.StringFlag{Name: "value", Usage: "Numeric value column", Required: true},
			&cli.StringFlag{Name: "freq", Usage: "Bucket size for line/heatmap", Value: "M"},
			&cli.IntFlag{Name: "window", Usage: "Moving average window for line", Value: 3},
			&cli.StringFlag{Name: "title", Usage: "Chart title", Value: "TaskNinja Chart"},
			&cli.StringFlag{Name: "out", Usage: "Output HTML filename (default under the charts dir)"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			ds, err := dataset.Load(cmd.Args().First())
			if err != nil {
				return err
			}
			value := cmd.String("value")
			title := cmd.String("title")
			kind := cmd.String("kind")

			filename := cmd.String("out")
			if filename == "" {
				filename = kind + ".html"
			}

			var saved string
			switch kind {
			case "line", "heatmap":
				date := cmd.String("date")
				if date == "" {
					return apperrors.InvalidInput("line and heatmap charts need --date")
				}
				freq, err := trend.ParseFrequency(cmd.String("freq"))
				if err != nil {
					return err
				}
				series, err := trend.Resample(ds, date, value, freq)
				if err != nil {
					return err
				}
				if kind == "line" {
					saved, err = chart.Save(chart.TrendLine(series, int(cmd.Int("window")), title), a.paths.ChartsDir, filename)
				} else {
					saved, err = chart.Save(chart.YearMonthHeatmap(series, title), a.paths.ChartsDir, filename)
				}
				if err != nil {
					return err
				}
			case "bar", "pie":
				group := cmd.String("group")
				if group == "" {
					return apperrors.InvalidInput("bar and pie charts need --group")
				}
				summary, err := aggregate.By(ds, value, group)
				if err != nil {
					return err
				}
				if kind == "bar" {
					saved, err = chart.Save(chart.GroupBar(summary, title), a.paths.ChartsDir, filename)
				} else {
					saved, err = chart.Save(chart.GroupPie(summary, title), a.paths.ChartsDir, filename)
				}
				if err != nil {
					return err
				}
			default:
				return apperrors.InvalidInput(fmt.Sprintf("unknown chart kind %q", kind))
			}
			fmt.Printf("Wrote %s\n", saved)
			return nil
		}),
	}
}
