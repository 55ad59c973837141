package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"videonotes/internal/app"
	"videonotes/internal/config"
	"videonotes/internal/service"
)

// openFunc builds the note service and returns a function releasing it.
type openFunc func(ctx context.Context) (service.NoteService, func() error, error)

func openApp(ctx context.Context) (service.NoteService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	app.SetupLogging(cfg)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return a.Notes, a.Close, nil
}

func newCommand(open openFunc, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "videonotes",
		Usage: "Turn YouTube videos into timestamped Markdown notes",
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate a note for a video",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Note title, defaults to the video title"},
					&cli.StringFlag{Name: "prompt", Usage: "Summary instructions replacing the default prompt"},
					&cli.StringFlag{
						Name:    "provider",
						Usage:   "LLM backend to use (openai or gemini)",
						Sources: cli.EnvVars("VIDEONOTES_PROVIDER"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					url := cmd.Args().First()
					if url == "" {
						return errors.New("generate: a video URL is required")
					}
					notes, closeFn, err := open(ctx)
					if err != nil {
						return err
					}
					defer func() {
						_ = closeFn()
					}()

					res, err := notes.Generate(ctx, service.GenerateRequest{
						URL:      url,
						Title:    cmd.String("title"),
						Prompt:   cmd.String("prompt"),
						Provider: cmd.String("provider"),
					})
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(out, res.Path)
					slog.Info("Note written",
						"id", res.ID,
						"provider", res.Provider,
						"chunks", res.Chunks,
						"headings", res.Headings(),
						"linked", res.Outcomes.Linked)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List recently generated notes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum notes to list"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					notes, closeFn, err := open(ctx)
					if err != nil {
						return err
					}
					defer func() {
						_ = closeFn()
					}()

					records, err := notes.List(ctx, int(cmd.Int("limit")))
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					_, _ = fmt.Fprintln(tw, "CREATED\tLINKED\tTITLE\tPATH")
					for _, n := range records {
						_, _ = fmt.Fprintf(tw, "%s\t%d/%d\t%s\t%s\n",
							n.CreatedAt.Local().Format("2006-01-02 15:04"),
							n.LinkedCount, n.HeadingCount, n.Title, n.RelPath)
					}
					return tw.Flush()
				},
			},
		},
	}
}

func main() {
	if err := newCommand(openApp, os.Stdout).Run(context.Background(), os.Args); err != nil {
		slog.Error("videonotes failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
