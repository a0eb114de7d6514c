package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodedot/kodebuild/internal/config"
	"github.com/kodedot/kodebuild/internal/postbuild"
)

func (a *app) uf2Command() *cobra.Command {
	var output, family, base string
	cmd := &cobra.Command{
		Use:   "uf2 <input.hex|input.bin>",
		Short: "Convert an Intel HEX or raw binary image to UF2",
		Long: `Convert a firmware image to UF2 for drag-and-drop flashing.

Intel HEX input carries its own addresses. Raw .bin input is placed at
--base (default from configuration, 0x2000).`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			in := args[0]
			if output == "" {
				output = strings.TrimSuffix(in, filepath.Ext(in)) + ".uf2"
			}

			familyID := a.cfg.UF2.FamilyID
			if family != "" {
				id, err := config.ParseUint32(family)
				if err != nil {
					return fmt.Errorf("--family: %w", err)
				}
				familyID = id
			}
			baseAddr := a.cfg.UF2.BaseAddress
			if base != "" {
				addr, err := config.ParseUint32(base)
				if err != nil {
					return fmt.Errorf("--base: %w", err)
				}
				baseAddr = addr
			}

			var (
				blocks int
				err    error
			)
			switch strings.ToLower(filepath.Ext(in)) {
			case ".hex", ".ihex":
				blocks, err = postbuild.ConvertHex(in, output, familyID)
			case ".bin":
				blocks, err = postbuild.ConvertBinary(in, output, baseAddr, familyID)
			default:
				return fmt.Errorf("unsupported input %s: expected .hex or .bin", in)
			}
			if err != nil {
				return fmt.Errorf("failed to convert %s: %w", in, err)
			}

			a.log.Info("UF2 file written", "path", output, "blocks", blocks,
				"family", fmt.Sprintf("0x%08X", familyID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default input with .uf2 extension)")
	cmd.Flags().StringVarP(&family, "family", "f", "", "UF2 family ID, decimal or 0x hex")
	cmd.Flags().StringVarP(&base, "base", "b", "", "Load address for raw binary input")
	return cmd
}
