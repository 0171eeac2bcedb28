package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"scopecss-go/packages/shim/src/css"
)

var log *zap.Logger

func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	if cmd.Bool("debug") {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	return ctx, nil
}

func closeLogger(_ context.Context, _ *cli.Command) error {
	if log != nil {
		_ = log.Sync()
	}
	return nil
}

func main() {

	// allow graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "scopecss",
		Usage:           "scopes component stylesheets for emulated shadow DOM",
		HideHelpCommand: true,
		Before:          initLogger,
		After:           closeLogger,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose development logging"},
		},
		Commands: []*cli.Command{
			{
				Name:      "shim",
				Usage:     "Scopes one or more CSS files with the given markers",
				Action:    runShim,
				ArgsUsage: "FILE [FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "content", Value: css.DefaultContentAttr, Usage: "content marker `ATTR` added to scoped compounds"},
					&cli.StringFlag{Name: "host", Value: css.DefaultHostAttr, Usage: "host marker `ATTR` added for :host compounds"},
					&cli.BoolFlag{Name: "legacy", Usage: "legacy encapsulation: do not scope past :host"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output `DIR` (default: next to the input, with a .scoped.css suffix)"},
				},
			},
			{
				Name:      "batch",
				Usage:     "Scopes every component stylesheet listed in a YAML manifest",
				Action:    runBatch,
				ArgsUsage: "MANIFEST",
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set the exit code, keep
	// it after every deferred function
	defer func() {
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func runShim(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("no input files")
	}

	sc := css.NewShadowCss(css.ShadowCssOptions{
		ContentAttr: cmd.String("content"),
		HostAttr:    cmd.String("host"),
		Legacy:      cmd.Bool("legacy"),
	}, log)

	var errs error
	for _, name := range cmd.Args().Slice() {
		if err := shimFile(sc, name, outPath(name, cmd.String("out"))); err != nil {
			log.Error("Unable to process file", zap.String("file", name), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs
}

// component is one entry of a batch manifest.
type component struct {
	Styles  string `yaml:"styles"`
	Content string `yaml:"content"`
	Host    string `yaml:"host"`
	Legacy  bool   `yaml:"legacy"`
	Out     string `yaml:"out"`
}

type manifest struct {
	Components []component `yaml:"components"`
}

func runBatch(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one manifest file")
	}
	name := cmd.Args().Get(0)

	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("unable to read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unable to parse manifest '%s': %w", name, err)
	}

	var errs error
	for i, c := range m.Components {
		if c.Styles == "" {
			errs = multierr.Append(errs, fmt.Errorf("component %d: missing styles path", i))
			continue
		}
		sc := css.NewShadowCss(css.ShadowCssOptions{
			ContentAttr: c.Content,
			HostAttr:    c.Host,
			Legacy:      c.Legacy,
		}, log)
		out := c.Out
		if out == "" {
			out = scopedName(c.Styles)
		}
		if err := shimFile(sc, c.Styles, out); err != nil {
			log.Error("Unable to process component", zap.Int("component", i), zap.String("styles", c.Styles), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Styles, err))
		}
	}
	return errs
}

func shimFile(sc *css.ShadowCss, in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	scoped, err := sc.ShimCssText(string(data))
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(scoped+"\n"), 0o644); err != nil {
		return err
	}
	log.Debug("Scoped stylesheet", zap.String("in", in), zap.String("out", out))
	return nil
}

func outPath(in, outDir string) string {
	if outDir == "" {
		return scopedName(in)
	}
	return filepath.Join(outDir, filepath.Base(scopedName(in)))
}

func scopedName(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".scoped" + filepath.Ext(in)
}
