package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"taskninja/internal/apiclient"
	"taskninja/internal/currency"
	apperrors "taskninja/internal/errors"
	"taskninja/internal/weather"
)

func apiCmd() *cli.Command {
	saveFlag := &cli.StringFlag{Name: "save", Usage: "Write the payload to this JSON file"}
	return &cli.Command{
		Name:  "api",
		Usage: "Fetch from public demo APIs or any JSON URL",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "Fetch generated user profiles",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "How many profiles", Value: 5},
					saveFlag,
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					users, err := a.client.RandomUsers(ctx, int(cmd.Int("n")))
					if err != nil {
						return err
					}
					for _, u := range users {
						fmt.Printf("%-25s %-30s %s\n", u.Name, u.Email, u.Country)
					}
					return saveIfAsked(cmd, users)
				}),
			},
			{
				Name:      "crypto",
				Usage:     "Fetch spot prices for coins",
				ArgsUsage: "[coin...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "currency", Usage: "Quote currency", Value: "usd"},
					saveFlag,
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					coins := cmd.Args().Slice()
					if len(coins) == 0 {
						coins = []string{"bitcoin", "ethereum"}
					}
					prices, err := a.client.CoinPrices(ctx, coins, cmd.String("currency"))
					if err != nil {
						return err
					}
					for _, p := range prices {
						fmt.Printf("%-12s %12.2f %s\n", p.Coin, p.Price, strings.ToUpper(p.Currency))
					}
					return saveIfAsked(cmd, prices)
				}),
			},
			{
				Name:  "news",
				Usage: "Fetch current top stories",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "How many stories", Value: 10},
					saveFlag,
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					stories, err := a.client.TopStories(ctx, int(cmd.Int("n")))
					if err != nil {
						return err
					}
					for _, s := range stories {
						fmt.Printf("%4d points  %s (%s)\n", s.Score, s.Title, s.By)
					}
					return saveIfAsked(cmd, stories)
				}),
			},
			{
				Name:      "get",
				Usage:     "GET any URL and pretty-print the JSON",
				ArgsUsage: "<url>",
				Flags:     []cli.Flag{saveFlag},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					url := cmd.Args().First()
					if url == "" {
						return apperrors.InvalidInput("a URL is required")
					}
					var payload any
					if err := a.client.GetJSON(ctx, url, &payload); err != nil {
						return err
					}
					pretty, err := prettyJSON(payload)
					if err != nil {
						return err
					}
					fmt.Println(pretty)
					return saveIfAsked(cmd, payload)
				}),
			},
		},
	}
}

func saveIfAsked(cmd *cli.Command, v any) error {
	path := cmd.String("save")
	if path == "" {
		return nil
	}
	if err := apiclient.SaveJSON(path, v); err != nil {
		return err
	}
	fmt.Printf("Saved to %s\n", path)
	return nil
}

func weatherCmd() *cli.Command {
	service := func(a *app) *weather.Service {
		return weather.NewService(a.cfg.Weather, a.client,
			a.paths.GetCachePath("weather"),
			a.paths.GetHistoryPath("weather.json"))
	}
	return &cli.Command{
		Name:  "weather",
		Usage: "Current conditions, forecasts, and city comparisons",
		Commands: []*cli.Command{
			{
				Name:      "now",
				Usage:     "Current conditions for a city",
				ArgsUsage: "<city>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					svc := service(a)
					report, err := svc.Current(ctx, strings.Join(cmd.Args().Slice(), " "))
					if err != nil {
						return err
					}
					printReport(report, svc.UnitSuffix())
					return nil
				}),
			},
			{
				Name:      "forecast",
				Usage:     "Upcoming three-hour slots",
				ArgsUsage: "<city>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "How many slots", Value: 8},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					svc := service(a)
					entries, err := svc.Forecast(ctx, strings.Join(cmd.Args().Slice(), " "), int(cmd.Int("n")))
					if err != nil {
						return err
					}
					for _, e := range entries {
						fmt.Printf("%s  %6.1f%s  %3d%%  %s\n",
							e.At.Format("Mon 15:04"), e.Temp, svc.UnitSuffix(), e.Humidity, e.Condition)
					}
					return nil
				}),
			},
			{
				Name:      "compare",
				Usage:     "Compare several cities, warmest first",
				ArgsUsage: "<city> <city> [city...]",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					svc := service(a)
					reports, err := svc.Compare(ctx, cmd.Args().Slice())
					if err != nil {
						return err
					}
					for _, r := range reports {
						fmt.Printf("%-20s %6.1f%s  %s\n", r.City, r.Temp, svc.UnitSuffix(), r.Condition)
					}
					return nil
				}),
			},
			{
				Name:  "history",
				Usage: "Past lookups, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "Limit (0 for all)", Value: 10},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					svc := service(a)
					history, err := svc.History(int(cmd.Int("n")))
					if err != nil {
						return err
					}
					for _, r := range history {
						fmt.Printf("%s  %-20s %6.1f%s  %s\n",
							r.FetchedAt.Format("2006-01-02 15:04"), r.City, r.Temp, svc.UnitSuffix(), r.Condition)
					}
					return nil
				}),
			},
		},
	}
}

func printReport(r weather.Report, suffix string) {
	fmt.Printf("%s, %s: %s (%s)\n", r.City, r.Country, r.Condition, r.Description)
	fmt.Printf("  temperature %.1f%s (feels like %.1f%s)\n", r.Temp, suffix, r.FeelsLike, suffix)
	fmt.Printf("  humidity %d%%, wind %.1f m/s from %s\n", r.Humidity, r.WindSpeed, r.WindDir)
}

func currencyCmd() *cli.Command {
	service := func(a *app) *currency.Service {
		return currency.NewService(a.cfg.Currency, a.client,
			a.paths.GetCachePath("currency"),
			a.paths.HistoryDir,
			a.paths.FavoritesFile)
	}
	return &cli.Command{
		Name:  "currency",
		Usage: "Convert currencies with live rates",
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Convert an amount",
				ArgsUsage: "<amount> <from> <to> [to...]",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) < 3 {
						return apperrors.InvalidInput("expected an amount, a source, and at least one target currency")
					}
					amount, err := parseAmount(args[0])
					if err != nil {
						return err
					}
					convs, err := service(a).ConvertMulti(ctx, amount, args[1], args[2:])
					if err != nil {
						return err
					}
					for _, c := range convs {
						fmt.Printf("%.2f %s = %.2f %s (rate %.6f, %s)\n",
							c.Amount, c.From, c.Result, c.To, c.Rate, c.Source)
					}
					return nil
				}),
			},
			{
				Name:      "rates",
				Usage:     "List all rates for a base currency",
				ArgsUsage: "<base>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					rates, err := service(a).Rates(ctx, cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("Rates for %s (%s, %s):\n", rates.Base, rates.Source,
						rates.FetchedAt.Format("2006-01-02 15:04"))
					for _, code := range sortedKeys(rates.Quotes) {
						fmt.Printf("  %s %12.6f\n", code, rates.Quotes[code])
					}
					return nil
				}),
			},
			{
				Name:      "cross",
				Usage:     "Derive a rate through a pivot currency",
				ArgsUsage: "<from> <to>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "via", Usage: "Pivot currency", Value: "USD"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected source and target currencies")
					}
					rate, err := service(a).CrossRate(ctx, args[0], args[1], cmd.String("via"))
					if err != nil {
						return err
					}
					fmt.Printf("%s/%s via %s: %.6f\n",
						strings.ToUpper(args[0]), strings.ToUpper(args[1]),
						strings.ToUpper(cmd.String("via")), rate)
					return nil
				}),
			},
			{
				Name:      "history",
				Usage:     "Past conversions for a pair",
				ArgsUsage: "<from> <to>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "Limit (0 for all)", Value: 10},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected source and target currencies")
					}
					history, err := service(a).History(args[0], args[1], int(cmd.Int("n")))
					if err != nil {
						return err
					}
					for _, c := range history {
						fmt.Printf("%s  %.2f %s -> %.2f %s (rate %.6f)\n",
							c.At.Format("2006-01-02 15:04"), c.Amount, c.From, c.Result, c.To, c.Rate)
					}
					return nil
				}),
			},
			{
				Name:      "favorite",
				Usage:     "Save a pair, or list saved pairs with no arguments",
				ArgsUsage: "[from] [to]",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					svc := service(a)
					if len(args) == 0 {
						pairs, err := svc.Favorites()
						if err != nil {
							return err
						}
						for _, p := range pairs {
							fmt.Println(p)
						}
						return nil
					}
					if len(args) != 2 {
						return apperrors.InvalidInput("expected source and target currencies")
					}
					if err := svc.AddFavorite(args[0], args[1]); err != nil {
						return err
					}
					fmt.Println("Saved.")
					return nil
				}),
			},
		},
	}
}
