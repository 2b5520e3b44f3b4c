package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	apperrors "taskninja/internal/errors"
	"taskninja/internal/mailer"
	"taskninja/internal/organizer"
	"taskninja/internal/pdftool"
	"taskninja/internal/whatsapp"
)

func organizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "organize",
		Usage:     "Sort a directory's files into category folders",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Show the plan without moving anything"},
			&cli.BoolFlag{Name: "undo", Usage: "Reverse the last organize runs"},
			&cli.BoolFlag{Name: "watch", Usage: "Keep filing new arrivals until interrupted"},
			&cli.DurationFlag{Name: "settle", Usage: "Quiet time before filing a new arrival", Value: 2 * time.Second},
			&cli.StringFlag{Name: "categories", Usage: "JSON file mapping folders to extensions"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			dir := cmd.Args().First()
			if dir == "" {
				return apperrors.InvalidInput("a directory is required")
			}
			if path := cmd.String("categories"); path != "" {
				if err := organizer.LoadCategories(path); err != nil {
					return err
				}
			}
			switch {
			case cmd.Bool("undo"):
				restored, err := organizer.Undo(dir)
				if err != nil {
					return err
				}
				fmt.Printf("Restored %d files.\n", restored)
				return nil
			case cmd.Bool("dry-run"):
				moves, err := organizer.Plan(dir)
				if err != nil {
					return err
				}
				if len(moves) == 0 {
					fmt.Println("Nothing to organize.")
					return nil
				}
				for _, m := range moves {
					fmt.Printf("%-12s %s -> %s\n", m.Category, m.From, m.To)
				}
				return nil
			case cmd.Bool("watch"):
				return organizer.Watch(ctx, dir, cmd.Duration("settle"))
			default:
				moved, err := organizer.Organize(dir)
				if err != nil {
					return err
				}
				fmt.Printf("Moved %d files.\n", len(moved))
				return nil
			}
		}),
	}
}

func pdfCmd() *cli.Command {
	return &cli.Command{
		Name:  "pdf",
		Usage: "Merge and inspect PDF files",
		Commands: []*cli.Command{
			{
				Name:      "merge",
				Usage:     "Merge PDFs in argument order",
				ArgsUsage: "<in.pdf> <in.pdf> [in.pdf...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "Output path", Value: "merged.pdf"},
					&cli.StringFlag{Name: "dir", Usage: "Merge every PDF in this directory instead of listing inputs"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					inputs := cmd.Args().Slice()
					if dir := cmd.String("dir"); dir != "" {
						collected, err := pdftool.CollectDir(dir)
						if err != nil {
							return err
						}
						inputs = collected
					}
					infos, err := pdftool.Merge(inputs, cmd.String("out"))
					if err != nil {
						return err
					}
					total := 0
					for _, info := range infos {
						total += info.Pages
					}
					fmt.Printf("Merged %d files (%d pages) into %s\n", len(infos), total, cmd.String("out"))
					return nil
				}),
			},
			{
				Name:      "info",
				Usage:     "Validate a PDF and count its pages",
				ArgsUsage: "<file.pdf>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					info, err := pdftool.Inspect(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("%s: valid, %d pages\n", info.Path, info.Pages)
					return nil
				}),
			},
		},
	}
}

func emailCmd() *cli.Command {
	return &cli.Command{
		Name:  "email",
		Usage: "Send templated email to a CSV recipient list",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Recipient table (CSV or Excel) with an email column", Required: true},
			&cli.StringFlag{Name: "subject", Usage: "Subject template", Required: true},
			&cli.StringFlag{Name: "body", Usage: "Body template", Required: true},
			&cli.BoolFlag{Name: "html", Usage: "Send the body as text/html"},
			&cli.StringSliceFlag{Name: "attach", Usage: "Attach a file to every message (repeatable)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Preview instead of sending"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			recipients, err := mailer.LoadRecipients(cmd.String("to"))
			if err != nil {
				return err
			}
			messages, skipped, err := mailer.Prepare(recipients, cmd.String("subject"), cmd.String("body"))
			if err != nil {
				return err
			}
			if skipped > 0 {
				fmt.Printf("Skipped %d rows without an email address.\n", skipped)
			}
			for i := range messages {
				messages[i].HTML = cmd.Bool("html")
				messages[i].Attachments = cmd.StringSlice("attach")
			}

			dryRun := cmd.Bool("dry-run")
			sent, err := mailer.New(a.cfg.Mail).Send(messages, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				for _, m := range sent {
					fmt.Printf("--- %s\nSubject: %s\n%s\n", m.To, m.Subject, m.Body)
				}
				return nil
			}
			fmt.Printf("Sent %d messages.\n", len(sent))
			return nil
		}),
	}
}

func whatsappCmd() *cli.Command {
	book := func(a *app) *whatsapp.ContactBook {
		return whatsapp.NewContactBook(a.paths.ContactsFile)
	}
	return &cli.Command{
		Name:  "whatsapp",
		Usage: "Send WhatsApp messages through WhatsApp Web",
		Commands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Send a message to a contact or phone number",
				ArgsUsage: "<contact-or-phone> <message>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "at", Usage: "Send at HH:MM or \"YYYY-MM-DD HH:MM\""},
					&cli.BoolFlag{Name: "headless", Usage: "Run the browser headless (after a first visible login)"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					args := cmd.Args().Slice()
					if len(args) < 2 {
						return apperrors.InvalidInput("expected a target and a message")
					}
					phone, err := book(a).Resolve(args[0])
					if err != nil {
						return err
					}
					sender := whatsapp.NewSender(a.paths.GetCachePath("whatsapp-profile"), cmd.Bool("headless"))
					text := args[1]

					if at := cmd.String("at"); at != "" {
						when, err := whatsapp.ParseSchedule(at, time.Now())
						if err != nil {
							return err
						}
						fmt.Printf("Sending at %s. Keep this terminal open.\n", when.Format("2006-01-02 15:04"))
						return sender.SendAt(ctx, phone, text, when)
					}
					return sender.Send(ctx, phone, text)
				}),
			},
			{
				Name:  "contacts",
				Usage: "Manage the contact book",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add or update a contact",
						ArgsUsage: "<name> <phone>",
						Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
							args := cmd.Args().Slice()
							if len(args) != 2 {
								return apperrors.InvalidInput("expected a name and a phone number")
							}
							contact, err := book(a).Add(args[0], args[1])
							if err != nil {
								return err
							}
							fmt.Printf("Saved %s (%s)\n", contact.Name, contact.Phone)
							return nil
						}),
					},
					{
						Name:  "list",
						Usage: "List contacts",
						Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
							contacts, err := book(a).List()
							if err != nil {
								return err
							}
							for _, c := range contacts {
								fmt.Printf("%-20s +%s\n", c.Name, c.Phone)
							}
							return nil
						}),
					},
					{
						Name:      "remove",
						Usage:     "Remove a contact",
						ArgsUsage: "<name>",
						Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
							return book(a).Remove(cmd.Args().First())
						}),
					},
				},
			},
		},
	}
}
