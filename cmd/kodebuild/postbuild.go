package main

import (
	"github.com/spf13/cobra"

	"github.com/kodedot/kodebuild/internal/config"
	"github.com/kodedot/kodebuild/internal/gitinfo"
	"github.com/kodedot/kodebuild/internal/postbuild"
	"github.com/kodedot/kodebuild/internal/props"
)

func (a *app) postBuildCommand() *cobra.Command {
	var platform, buildDir, progName string
	cmd := &cobra.Command{
		Use:   "postbuild",
		Short: "Post-process the linked firmware",
		Long: `Post-process the firmware after linking.

  espressif32  copy <progname>.bin to a versioned name
  nordicnrf52  convert <progname>.hex to <progname>.uf2

Failures are logged and never fail the build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if platform != "" {
				a.cfg.Project.Platform = platform
			}
			if buildDir != "" {
				a.cfg.Project.BuildDir = buildDir
			}
			if progName != "" {
				a.cfg.Project.ProgName = progName
			}

			ctx := cmd.Context()
			v, err := props.ReadVersion(ctx, a.cfg.ProjectPath(a.cfg.Paths.VersionFile), gitinfo.New(a.run, a.log.Step("git")))
			if err != nil {
				if a.cfg.Project.Platform == config.PlatformESP32 {
					a.log.WithError(err).Error("Post-build step failed, continuing")
					return nil
				}
				a.log.Debug("Version unavailable", "error", err)
			}

			res := postbuild.New(a.cfg, a.run, a.log).Process(ctx, v)
			for _, path := range res.Artifacts {
				a.log.Debug("Artifact", "path", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform (overrides PIOPLATFORM)")
	cmd.Flags().StringVar(&buildDir, "build-dir", "", "Build directory (overrides BUILD_DIR)")
	cmd.Flags().StringVar(&progName, "progname", "", "Firmware base name (overrides PROGNAME)")
	return cmd
}
