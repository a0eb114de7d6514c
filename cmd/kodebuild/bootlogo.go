package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodedot/kodebuild/internal/bootlogo"
	"github.com/kodedot/kodebuild/internal/flags"
)

func (a *app) bootLogoCommand() *cobra.Command {
	var (
		defines []string
		fit     bool
	)
	cmd := &cobra.Command{
		Use:   "bootlogo [build flags...]",
		Short: "Stage the branding boot logo for TFT builds",
		Long: `Copy branding/logo_<W>x<H>.png to data/boot/logo.png when the build
defines HAS_TFT=1. The resolution comes from DISPLAY_SIZE=WxH and defaults
to 240x240. Defines are read from the arguments, from --define and from
PLATFORMIO_BUILD_FLAGS.

With --fit, a missing exact-size asset is replaced by the largest branding
logo scaled to the display size.`,
		Example: `  kodebuild bootlogo -- -DHAS_TFT=1 -DDISPLAY_SIZE=320x240
  kodebuild bootlogo -D HAS_TFT=1 --fit`,
		RunE: func(_ *cobra.Command, args []string) error {
			if fit {
				a.cfg.Logo.Fit = true
			}

			lines := []string{os.Getenv("PLATFORMIO_BUILD_FLAGS")}
			lines = append(lines, args...)
			for _, d := range defines {
				lines = append(lines, "-D"+strings.TrimPrefix(d, "-D"))
			}

			res, err := bootlogo.NewInstaller(a.cfg, a.log).Install(flags.ParseDefines(lines...))
			if err != nil {
				a.log.WithError(err).Error("Boot logo not installed, continuing")
				return nil
			}
			a.log.Debug("Boot logo step done", "outcome", res.Outcome.String(), "dest", res.Dest)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Preprocessor define NAME=VALUE (repeatable)")
	cmd.Flags().BoolVar(&fit, "fit", false, "Scale the largest branding logo when the exact size is missing")
	return cmd
}
