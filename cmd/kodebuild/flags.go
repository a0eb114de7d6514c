package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kodedot/kodebuild/internal/flags"
	"github.com/kodedot/kodebuild/internal/gitinfo"
	"github.com/kodedot/kodebuild/internal/prefs"
	"github.com/kodedot/kodebuild/internal/props"
)

func (a *app) flagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Print the compiler defines for the current build",
		Long: `Print the build metadata defines followed by one define per entry of
the user preferences file, one flag per line:

  -DAPP_VERSION, -DAPP_VERSION_SHORT, -DAPP_ENV, -DAPP_REPO, -DBUILD_EPOCH

A missing or malformed preferences file only produces a warning. An
unreadable version file is an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := gitinfo.New(a.run, a.log.Step("git"))
			in := flags.Inputs{
				Env:   a.cfg.Project.Env,
				Epoch: flags.BuildEpoch(a.now()),
			}

			// Each lookup may shell out to git
			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.Go(func() error {
				v, err := props.ReadVersion(ctx, a.cfg.ProjectPath(a.cfg.Paths.VersionFile), repo)
				in.Version = v
				return err
			})
			eg.Go(func() error {
				in.Repo = repo.RepoOwner(ctx)
				return nil
			})
			eg.Go(func() error {
				in.Prefs = prefs.Load(a.cfg.ProjectPath(a.cfg.Paths.PrefsFile), a.log)
				return nil
			})
			if err := eg.Wait(); err != nil {
				return err
			}

			list := flags.Build(in)
			a.log.Debug("Build flags", "version", in.Version.Long, "count", len(list))
			return printLines(cmd, list)
		},
	}
}

func (a *app) linkFlagsCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "linkflags",
		Short: "Print the extra linker flags for an ESP32 variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if kind == "" {
				kind = a.cfg.Project.ESP32Kind
			}
			return printLines(cmd, flags.LinkFlags(kind))
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "ESP32 variant (custom_esp32_kind); overrides configuration")
	return cmd
}

func printLines(cmd *cobra.Command, lines []string) error {
	out := cmd.OutOrStdout()
	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}
	return nil
}
