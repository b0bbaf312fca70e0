package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/prowogene/toolkit/internal/config"
	"github.com/prowogene/toolkit/internal/importcfg"
	"github.com/prowogene/toolkit/internal/prefs"
	"github.com/prowogene/toolkit/internal/toolkit"
	"github.com/prowogene/toolkit/pkg/core"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const AppName = "prowogene"

const usage = `Usage: prowogene <command> [flags]

Commands:
  generate   run the landscape generator with the settings file
  import     place the generated landscape into the scene
  validate   check the import config named by the settings file
  recent     print the paths used by the last command
  history    print past import runs kept by the sqlite or postgres storage

Flags:
`

// Exit codes
const (
	exitFinished  = 0
	exitCancelled = 1
	exitUsage     = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config-dir", ".", "directory containing "+config.FileName)
	fs.String("app", "", "path to the generator application")
	fs.String("settings", "", "path to the generator settings file")
	fs.String("workdir", "", "directory the settings file paths are relative to")
	fs.Int("limit", 10, "number of runs printed by history")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	return fs
}

func bindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"generator.application": "app",
		"generator.settings":    "settings",
		"generator.workingDir":  "workdir",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	command := fs.Arg(0)
	switch command {
	case "generate", "import", "validate", "recent", "history":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fs.Usage()
		return exitUsage
	}

	if err := bindFlags(fs); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	configDir, _ := fs.GetString("config-dir")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := setup(ctx, configDir, time.Now(), stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCancelled
	}
	defer app.shutdown()

	gen := config.GetGeneratorConfig()
	p := prefs.Preferences{
		Application: gen.Application,
		Settings:    gen.Settings,
		WorkingDir:  gen.WorkingDir,
	}

	switch command {
	case "generate":
		return exitCode(app.service.Generate(ctx, p))
	case "import":
		return exitCode(app.service.Import(ctx, p))
	case "validate":
		report := app.service.Validate(p)
		printReport(stdout, report)
		if report.Mode == core.ImportModeNone {
			return exitCancelled
		}
		return exitFinished
	case "history":
		limit, _ := fs.GetInt("limit")
		records, err := app.service.History(limit)
		if err != nil {
			app.logger.Error("No import history", "error", err)
			return exitCancelled
		}
		return printJSON(stdout, records)
	default:
		recent, err := app.service.Recent()
		if err != nil {
			app.logger.Error("No recent values", "error", err)
			return exitCancelled
		}
		return printJSON(stdout, recent)
	}
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitCancelled
	}
	return exitFinished
}

func exitCode(status toolkit.Status) int {
	if status == toolkit.StatusFinished {
		return exitFinished
	}
	return exitCancelled
}

func printReport(w io.Writer, r importcfg.Report) {
	fmt.Fprintf(w, "config:  %s\n", r.Path)
	fmt.Fprintf(w, "mode:    %s\n", r.Mode)
	if r.LoadErr != nil {
		fmt.Fprintf(w, "load:    %v\n", r.LoadErr)
		return
	}
	fmt.Fprintf(w, "chunks:  %s\n", reason(r.ChunkErr))
	fmt.Fprintf(w, "complex: %s\n", reason(r.ComplexErr))
}

func reason(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
