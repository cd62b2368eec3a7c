package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"

	"NewsLens/internal/app"
	"NewsLens/internal/config"
	"NewsLens/internal/domain"
	"NewsLens/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "newslens:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "newslens",
		Usage: "score news articles for framing, sentiment and ideological leaning",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"NEWSLENS_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  config.CommandScore,
				Usage: "score every unprocessed record in the store",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Usage: "rerun on the scheduler interval until interrupted"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, config.CommandScore, func(a *app.Application) error {
						err := a.Score(c.Context, c.Bool("watch"))
						if errors.Is(err, context.Canceled) {
							return nil
						}
						return err
					})
				},
			},
			{
				Name:  config.CommandIngest,
				Usage: "pull recent feed entries into the store",
				Action: func(c *cli.Context) error {
					return withApp(c, config.CommandIngest, func(a *app.Application) error {
						report, err := a.Ingest(c.Context)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "inserted %d, duplicates %d, failed %d\n",
							report.Inserted, report.Duplicates, report.Failed)
						return nil
					})
				},
			},
			{
				Name:  config.CommandLexicon,
				Usage: "manage the lexicon cache",
				Subcommands: []*cli.Command{
					{
						Name:  "warm",
						Usage: "build the lexicon cache from its resources if missing",
						Action: func(c *cli.Context) error {
							return withApp(c, config.CommandLexicon, func(a *app.Application) error {
								sizes, err := a.WarmLexicon()
								if err != nil {
									return err
								}
								names := make([]string, 0, len(sizes))
								for name := range sizes {
									names = append(names, name)
								}
								sort.Strings(names)
								for _, name := range names {
									fmt.Fprintf(c.App.Writer, "%-12s %d\n", name, sizes[name])
								}
								return nil
							})
						},
					},
				},
			},
			{
				Name:  config.CommandAnalyze,
				Usage: "score a local text file with supplied framing values",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Usage: "article text file", Required: true},
					&cli.Float64Flag{Name: "framing", Usage: "framing direction in [-1, 1]"},
					&cli.Float64Flag{Name: "intensity", Usage: "language intensity in [0, 1]"},
					&cli.Float64Flag{Name: "sensationalism", Usage: "sensationalism score in [0, 1]"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, config.CommandAnalyze, func(a *app.Application) error {
						raw, err := os.ReadFile(c.Path("file"))
						if err != nil {
							return fmt.Errorf("read article: %w", err)
						}
						analysis, err := a.Analyze(string(raw), domain.ExternalFraming{
							FramingDirection:    c.Float64("framing"),
							LanguageIntensity:   c.Float64("intensity"),
							SensationalismScore: c.Float64("sensationalism"),
						})
						if err != nil {
							return err
						}
						printAnalysis(c, analysis)
						return nil
					})
				},
			},
		},
	}
}

func withApp(c *cli.Context, command string, run func(*app.Application) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(command); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	application := app.New(cfg, logger)
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	return run(application)
}

func printAnalysis(c *cli.Context, a app.Analysis) {
	r := a.Result
	w := c.App.Writer
	fmt.Fprintf(w, "Words / chars:            %d / %d\n", a.Words, a.Chars)
	fmt.Fprintf(w, "Script:                   %s\n", r.Script)
	if len(a.Clamped) > 0 {
		fmt.Fprintf(w, "Clamped inputs:           %v\n", a.Clamped)
	}
	fmt.Fprintf(w, "Composite ideology score: %.4f\n", r.CompositeIdeologyScore)
	fmt.Fprintf(w, "Political leaning:        %s\n", r.PoliticalLeaning)
	fmt.Fprintf(w, "Sentiment:                %s (%.4f)\n", r.Sentiment, r.SentimentPolarity)
	fmt.Fprintf(w, "Economic risk:            %.4f\n", r.EconomicRiskScore)
	fmt.Fprintf(w, "Threat signal:            %.4f\n", r.ThreatSignal)
	fmt.Fprintf(w, "Lexical intensity:        %.4f\n", r.LexicalIntensityScore)
	p := r.EmotionProfile
	fmt.Fprintf(w, "Emotions:                 anger %.2f  fear %.2f  trust %.2f  joy %.2f  disgust %.2f\n",
		p.Anger, p.Fear, p.Trust, p.Joy, p.Disgust)
}
