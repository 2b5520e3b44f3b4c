package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"taskninja/internal/dashboard"
)

func dashboardCmd() *cli.Command {
	return &cli.Command{
		Name:      "dashboard",
		Usage:     "Serve the analytics dashboard over HTTP",
		ArgsUsage: "<data-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Usage: "Group column", Value: "region"},
			&cli.StringFlag{Name: "value", Usage: "Numeric value column", Value: "amount"},
			&cli.StringFlag{Name: "date", Usage: "Date column for trend views", Value: "date"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			source := dashboard.NewDataSource(
				cmd.Args().First(),
				cmd.String("group"),
				cmd.String("value"),
				cmd.String("date"),
			)
			srv := dashboard.NewServer(a.cfg.Server, source, a.logger)
			fmt.Printf("Dashboard on http://localhost:%d (Ctrl+C to stop)\n", a.cfg.Server.Port)
			return srv.Run(ctx)
		}),
	}
}
