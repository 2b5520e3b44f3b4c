package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	apperrors "taskninja/internal/errors"
	"taskninja/internal/jsontool"
)

func jsonCmd() *cli.Command {
	return &cli.Command{
		Name:  "json",
		Usage: "Inspect and edit JSON files with dot paths",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Read a value at a dot path (omit the path for the whole document)",
				ArgsUsage: "<file> [path]",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					doc, err := jsontool.LoadFile(cmd.Args().First())
					if err != nil {
						return err
					}
					if path := cmd.Args().Get(1); path != "" {
						doc, err = jsontool.Get(doc, path)
						if err != nil {
							return err
						}
					}
					pretty, err := jsontool.Pretty(doc)
					if err != nil {
						return err
					}
					fmt.Println(pretty)
					return nil
				}),
			},
			{
				Name:      "set",
				Usage:     "Set a value at a dot path and rewrite the file",
				ArgsUsage: "<file> <path> <value>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 3 {
						return apperrors.InvalidInput("expected a file, a path, and a value")
					}
					doc, err := jsontool.LoadFile(args[0])
					if err != nil {
						return err
					}
					// Values parse as JSON first so numbers and booleans keep
					// their types; anything unparsable is a plain string.
					var value any
					if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
						value = args[2]
					}
					doc, err = jsontool.Set(doc, args[1], value)
					if err != nil {
						return err
					}
					return jsontool.SaveFile(doc, args[0])
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a dot path and rewrite the file",
				ArgsUsage: "<file> <path>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected a file and a path")
					}
					doc, err := jsontool.LoadFile(args[0])
					if err != nil {
						return err
					}
					doc, err = jsontool.Delete(doc, args[1])
					if err != nil {
						return err
					}
					return jsontool.SaveFile(doc, args[0])
				}),
			},
			{
				Name:      "search",
				Usage:     "Find keys and values containing a term",
				ArgsUsage: "<file> <term>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected a file and a search term")
					}
					doc, err := jsontool.LoadFile(args[0])
					if err != nil {
						return err
					}
					matches := jsontool.Search(doc, args[1])
					if len(matches) == 0 {
						fmt.Println("No matches.")
						return nil
					}
					for _, m := range matches {
						where := "value"
						if m.InKey {
							where = "key"
						}
						fmt.Printf("%-40s %-5s %v\n", m.Path, where, m.Value)
					}
					return nil
				}),
			},
			{
				Name:      "merge",
				Usage:     "Merge an overlay file into a base file",
				ArgsUsage: "<base> <overlay>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "deep", Usage: "Merge nested objects instead of replacing them"},
					&cli.StringFlag{Name: "out", Usage: "Write here instead of overwriting the base"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return apperrors.InvalidInput("expected base and overlay files")
					}
					base, err := loadObject(args[0])
					if err != nil {
						return err
					}
					overlay, err := loadObject(args[1])
					if err != nil {
						return err
					}
					merged := jsontool.Merge(base, overlay, cmd.Bool("deep"))
					out := cmd.String("out")
					if out == "" {
						out = args[0]
					}
					return jsontool.SaveFile(merged, out)
				}),
			},
		},
	}
}

func loadObject(path string) (map[string]any, error) {
	doc, err := jsontool.LoadFile(path)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s is not a JSON object", path))
	}
	return obj, nil
}
