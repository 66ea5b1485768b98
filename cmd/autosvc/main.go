// Command autosvc scans a Go module for //autosvc:service markers and
// generates one service manifest per declared interface under
// META-INF/services/ in the output directory.
//
// Usage:
//
//	//go:generate go run autosvc/cmd/autosvc -o gen/resources
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"autosvc/internal/artifact"
	"autosvc/internal/registry"
	"autosvc/internal/scan"
	"autosvc/pkg/log"
)

type options struct {
	Output  string `short:"o" long:"output" default:"." description:"Generated-resources root directory"`
	Config  string `short:"c" long:"config" description:"Configuration file path (default: autosvc.yml at the module root)"`
	Verify  bool   `long:"verify" description:"Verify that each implementer satisfies its declared interfaces"`
	Verbose bool   `short:"v" long:"verbose" description:"Log grouping decisions"`
}

var logger = log.New("main")

func main() {
	opts, patterns := parseCLI()
	applyFromEnv(&opts)

	if opts.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve working directory")
	}
	moduleRoot, err := scan.FindModuleRoot(cwd)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to locate module root")
	}

	cfg, err := scan.BuildConfig(moduleRoot, opts.Config)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build configuration")
	}
	if len(patterns) > 0 {
		cfg.Scan = patterns
	}

	scanner, err := scan.NewScanner(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create scanner")
	}
	occs, err := scanner.Scan()
	if err != nil {
		logger.Fatal().Err(err).Msg("scan failed")
	}
	logger.Info().Int("occurrences", len(occs)).Str("module", cfg.Module).Msg("scan complete")

	store, err := artifact.NewDirStore(opts.Output)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open artifact store")
	}

	round := registry.NewRound(registry.Options{
		Verify:  opts.Verify,
		Verbose: opts.Verbose,
	})
	if err := round.Collect(occs); err != nil {
		logger.Fatal().Err(err).Msg("collection failed")
	}
	artifacts, err := round.Emit(store)
	if err != nil {
		logger.Fatal().Err(err).Msg("emission failed")
	}
	if err := store.Flush(); err != nil {
		logger.Fatal().Err(err).Msg("failed to persist artifact index")
	}

	logger.Info().Int("manifests", len(artifacts)).Str("output", opts.Output).Msg("generation complete")
}

func parseCLI() (options, []string) {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "autosvc"
	parser.Usage = "[OPTION]... [PACKAGE-PATTERN]..."

	rest, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	return opts, rest
}

func applyFromEnv(opts *options) {
	if v, ok := os.LookupEnv("AUTOSVC_OUTPUT"); ok && opts.Output == "." {
		opts.Output = v
	}
	if v, ok := os.LookupEnv("AUTOSVC_CONFIG"); ok && opts.Config == "" {
		opts.Config = v
	}
}
