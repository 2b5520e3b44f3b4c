package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"taskninja/internal/calc"
	"taskninja/internal/clock"
	"taskninja/internal/convert"
	apperrors "taskninja/internal/errors"
	"taskninja/internal/guess"
	"taskninja/internal/todo"
)

func calcCmd() *cli.Command {
	return &cli.Command{
		Name:      "calc",
		Usage:     "Calculator: pass \"X op Y\" or run without arguments for the menu",
		ArgsUsage: "[x] [op] [y]",
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			args := cmd.Args().Slice()
			if len(args) == 3 {
				return calcOnce(args[0], args[1], args[2])
			}
			if len(args) != 0 {
				return apperrors.InvalidInput("expected three arguments: X op Y")
			}
			return calcLoop()
		}),
	}
}

func calcOnce(xs, ops, ys string) error {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("%q is not a number", xs))
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("%q is not a number", ys))
	}
	op, err := calc.ParseOperator(ops)
	if err != nil {
		return err
	}
	result, err := calc.Calculate(op, x, y)
	if err != nil {
		return err
	}
	fmt.Printf("%g %s %g = %g\n", x, op, y, result)
	return nil
}

func calcLoop() error {
	fmt.Println("Calculator. Operators: + - * /  (q to quit)")
	for {
		raw, err := prompt("op> ")
		if err != nil {
			return quitOnEOF(err)
		}
		if raw == "q" || raw == "quit" {
			return nil
		}
		op, err := calc.ParseOperator(raw)
		if err != nil {
			fmt.Println(err)
			continue
		}
		x, err := promptFloat("x> ")
		if err != nil {
			return quitOnEOF(err)
		}
		y, err := promptFloat("y> ")
		if err != nil {
			return quitOnEOF(err)
		}
		result, err := calc.Calculate(op, x, y)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("= %g\n", result)
	}
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Unit converter: pass a conversion key and value, or run the menu",
		ArgsUsage: "[key] [value]",
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			args := cmd.Args().Slice()
			if len(args) == 2 {
				value, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return apperrors.InvalidInput(fmt.Sprintf("%q is not a number", args[1]))
				}
				result, err := convert.Convert(args[0], value)
				if err != nil {
					return err
				}
				fmt.Printf("%g -> %g\n", value, result)
				return nil
			}
			if len(args) != 0 {
				return apperrors.InvalidInput("expected a conversion key and a value")
			}
			return convertLoop()
		}),
	}
}

func convertLoop() error {
	for {
		fmt.Println("Categories:")
		for i, cat := range convert.Categories {
			fmt.Printf("  %d. %s\n", i+1, cat.Label)
		}
		fmt.Println("  q. Quit")
		raw, err := prompt("category> ")
		if err != nil {
			return quitOnEOF(err)
		}
		if raw == "q" {
			return nil
		}
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 1 || idx > len(convert.Categories) {
			fmt.Println("Pick a category number.")
			continue
		}
		cat := convert.Categories[idx-1]
		for i, c := range cat.Conversions {
			fmt.Printf("  %d. %s\n", i+1, c.Label)
		}
		cidx, err := promptInt("conversion> ")
		if err != nil {
			return quitOnEOF(err)
		}
		if cidx < 1 || cidx > len(cat.Conversions) {
			fmt.Println("Pick a conversion number.")
			continue
		}
		conv := cat.Conversions[cidx-1]
		value, err := promptFloat("value> ")
		if err != nil {
			return quitOnEOF(err)
		}
		fmt.Printf("%s: %g -> %g\n", conv.Label, value, conv.Apply(value))
	}
}

func guessCmd() *cli.Command {
	return &cli.Command{
		Name:  "guess",
		Usage: "Number guessing game",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "difficulty",
				Usage: "easy, medium, or hard",
				Value: "medium",
			},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			d, err := guess.FindDifficulty(cmd.String("difficulty"))
			if err != nil {
				return err
			}
			return guessLoop(d)
		}),
	}
}

func guessLoop(d guess.Difficulty) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		game := guess.New(d, rng)
		fmt.Printf("%s: I picked a number between %d and %d. You have %d attempts.\n",
			d.Label, d.Min, d.Max, d.MaxAttempts)

		for !game.Over() {
			n, err := promptInt(fmt.Sprintf("guess (%d left)> ", game.Remaining()))
			if err != nil {
				return quitOnEOF(err)
			}
			outcome, err := game.Guess(n)
			if err != nil {
				fmt.Println(err)
				continue
			}
			switch outcome {
			case guess.TooLow:
				fmt.Println("Too low.")
			case guess.TooHigh:
				fmt.Println("Too high.")
			case guess.Correct:
				fmt.Printf("Correct! %d attempts, score %d.\n", game.Attempts, game.Score())
			}
		}
		if !game.Won {
			fmt.Printf("Out of attempts. The number was %d.\n", game.Secret)
		}
		again, err := confirm("Play again?")
		if err != nil {
			return quitOnEOF(err)
		}
		if !again {
			return nil
		}
	}
}

func clockCmd() *cli.Command {
	return &cli.Command{
		Name:  "clock",
		Usage: "Terminal clock with stopwatch",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "24h",
				Usage: "Use a 24-hour face",
			},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			return clock.Run(cmd.Bool("24h"))
		}),
	}
}

func todoCmd() *cli.Command {
	store := func(a *app) *todo.Store {
		return todo.NewStore(a.paths.TasksFile)
	}
	return &cli.Command{
		Name:  "todo",
		Usage: "To-do list backed by a JSON file",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "high, normal, or low"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					priority, err := todo.ParsePriority(cmd.String("priority"))
					if err != nil {
						return err
					}
					task, err := store(a).Add(cmd.Args().First(), priority)
					if err != nil {
						return err
					}
					fmt.Printf("Added %s (%s)\n", task.Text, task.ShortID())
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include completed tasks"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					tasks, err := store(a).List(cmd.Bool("all"))
					if err != nil {
						return err
					}
					if len(tasks) == 0 {
						fmt.Println("Nothing to do.")
						return nil
					}
					for _, t := range tasks {
						mark := " "
						if t.Done {
							mark = "x"
						}
						fmt.Printf("[%s] %-8s %-7s %s\n", mark, t.ShortID(), t.Priority, t.Text)
					}
					return nil
				}),
			},
			{
				Name:      "done",
				Usage:     "Mark a task complete",
				ArgsUsage: "<id>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					task, err := store(a).Complete(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("Done: %s\n", task.Text)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a task",
				ArgsUsage: "<id>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					return store(a).Delete(cmd.Args().First())
				}),
			},
			{
				Name:  "clear-done",
				Usage: "Remove all completed tasks",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					removed, err := store(a).ClearDone()
					if err != nil {
						return err
					}
					fmt.Printf("Removed %d completed tasks.\n", removed)
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "Show list totals",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					st, err := store(a).Stats()
					if err != nil {
						return err
					}
					fmt.Printf("Total %d, open %d, done %d, high priority open %d\n",
						st.Total, st.Open, st.Done, st.High)
					return nil
				}),
			},
		},
	}
}
