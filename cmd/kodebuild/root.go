package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodedot/kodebuild/internal/config"
	"github.com/kodedot/kodebuild/internal/logger"
	"github.com/kodedot/kodebuild/internal/runner"
)

// app carries the state shared by every subcommand
type app struct {
	configFile string
	projectDir string
	env        string
	logLevel   string
	verbose    bool

	cfg *config.Config
	log *logger.Logger
	run runner.Runner
	now func() time.Time
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return (&app{now: time.Now}).rootCommand(stdout, stderr)
}

func (a *app) rootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "kodebuild",
		Short: "Build glue for Kode OS firmware projects",
		Long: `kodebuild runs the custom steps of a Kode OS PlatformIO build.

PlatformIO exports PROJECT_DIR, BUILD_DIR, PIOENV, PROGNAME and PIOPLATFORM
to build scripts; kodebuild picks them up, so the hooks stay one-liners:

  build_flags = !kodebuild flags
  env.AddPostAction("$BUILD_DIR/${PROGNAME}.elf", "kodebuild postbuild")

Logs go to stderr. Results that PlatformIO consumes go to stdout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to configuration file (default <project-dir>/"+config.FileName+")")
	pf.StringVarP(&a.projectDir, "project-dir", "p", "", "PlatformIO project directory (overrides PROJECT_DIR)")
	pf.StringVarP(&a.env, "env", "e", "", "PlatformIO environment (overrides PIOENV)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.flagsCommand(),
		a.linkFlagsCommand(),
		a.postBuildCommand(),
		a.bootLogoCommand(),
		a.uf2Command(),
		a.configCommand(),
		versionCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger. Precedence is
// config file, then environment, then command-line flags.
func (a *app) setup(cmd *cobra.Command) error {
	projectDir := a.projectDir
	if projectDir == "" {
		projectDir = os.Getenv("PROJECT_DIR")
	}
	if projectDir == "" {
		projectDir = "."
	}

	cfg, err := config.Load(a.configFile, projectDir)
	if err != nil {
		return err
	}

	config.MergeWithEnvironment(cfg)

	if a.projectDir != "" {
		cfg.Project.Dir = a.projectDir
	}
	if a.env != "" {
		cfg.Project.Env = a.env
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}

	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.log = logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Color:  cfg.Logging.Color,
		File:   cfg.Logging.File,
		Output: cmd.ErrOrStderr(),
	})
	if a.run == nil {
		a.run = runner.NewExec(a.log, runner.WithDir(cfg.Project.Dir))
	}

	a.log.Debug("Configuration loaded",
		"project", cfg.Project.Dir,
		"env", cfg.Project.Env,
		"platform", cfg.Project.Platform,
		"build_dir", cfg.Project.BuildDir)
	return nil
}

func (a *app) close() {
	if a.log == nil {
		return
	}
	if err := a.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close logger: %v\n", err)
	}
}
