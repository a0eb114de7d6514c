// Package postbuild handles firmware artifacts once the linker is done:
// ESP32 application binaries get a versioned copy, nRF52 hex images are
// converted to UF2. Failures are reported but never fail the build.
package postbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kodedot/kodebuild/internal/config"
	"github.com/kodedot/kodebuild/internal/logger"
	"github.com/kodedot/kodebuild/internal/props"
	"github.com/kodedot/kodebuild/internal/runner"
	"github.com/kodedot/kodebuild/internal/uf2"
)

var (
	// ErrNoBuildDir is returned when the build directory is unknown
	ErrNoBuildDir = errors.New("build directory not set")
	// ErrUnsupportedPlatform is returned by Run for platforms without a post-build step
	ErrUnsupportedPlatform = errors.New("no post-build step for platform")
)

// Result lists the files a post-build step produced
type Result struct {
	Platform  string
	Artifacts []string
}

// Processor runs the platform's post-build step
type Processor struct {
	cfg *config.Config
	run runner.Runner
	log *logger.Logger
}

// New creates a Processor. r is only used when an external UF2 helper is configured.
func New(cfg *config.Config, r runner.Runner, log *logger.Logger) *Processor {
	return &Processor{cfg: cfg, run: r, log: log.Step("postbuild")}
}

// Process runs the step for the configured platform and absorbs any error
// into the log.
func (p *Processor) Process(ctx context.Context, v props.Version) Result {
	res, err := p.Run(ctx, v)
	switch {
	case errors.Is(err, ErrUnsupportedPlatform):
		p.log.Debug("Nothing to do", "platform", p.cfg.Project.Platform)
	case err != nil:
		p.log.WithError(err).Error("Post-build step failed, continuing")
	}
	return res
}

// Run runs the step for the configured platform
func (p *Processor) Run(ctx context.Context, v props.Version) (Result, error) {
	res := Result{Platform: p.cfg.Project.Platform}
	if p.cfg.Project.BuildDir == "" {
		return res, ErrNoBuildDir
	}

	switch p.cfg.Project.Platform {
	case config.PlatformESP32:
		out, err := p.ESP32(v)
		if err != nil {
			return res, err
		}
		res.Artifacts = append(res.Artifacts, out)
	case config.PlatformNRF52:
		out, err := p.NRF52(ctx)
		if err != nil {
			return res, err
		}
		res.Artifacts = append(res.Artifacts, out)
	default:
		return res, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, p.cfg.Project.Platform)
	}
	return res, nil
}

// ESP32 copies the application binary to a versioned name. The bootloader
// and partition table belong to Kode OS, so no merged image is produced;
// only the application is flashed, at the configured offset.
func (p *Processor) ESP32(v props.Version) (string, error) {
	src := p.artifact(".bin")
	dst := filepath.Join(p.cfg.Project.BuildDir, RenderName(p.cfg.ESP32.RenamePattern, p.cfg.Project.ProgName, p.cfg.Project.Env, v.Long))

	p.log.Info("Post-processing application build", "firmware", src)

	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}

	p.log.Info("Versioned application binary written", "path", dst)
	p.log.Infof("Ready for upload to 0x%X", p.cfg.ESP32.AppOffset)
	return dst, nil
}

// NRF52 converts the hex image to UF2
func (p *Processor) NRF52(ctx context.Context) (string, error) {
	hexPath := p.artifact(".hex")
	uf2Path := p.artifact(".uf2")

	p.log.Info("Generating UF2 file", "hex", hexPath, "uf2", uf2Path,
		"family", fmt.Sprintf("0x%08X", p.cfg.UF2.FamilyID))

	if p.cfg.UF2.Helper != "" {
		return uf2Path, p.runHelper(ctx, hexPath, uf2Path)
	}

	blocks, err := ConvertHex(hexPath, uf2Path, p.cfg.UF2.FamilyID)
	if err != nil {
		return "", err
	}
	p.log.Info("UF2 file written", "path", uf2Path, "blocks", blocks)
	return uf2Path, nil
}

func (p *Processor) runHelper(ctx context.Context, hexPath, uf2Path string) error {
	exe, args := runner.ParseCommand(p.cfg.UF2.Helper)
	if exe == "" {
		return runner.ErrEmptyCommand
	}
	args = append(args, hexPath, "-c", "-f", fmt.Sprintf("0x%X", p.cfg.UF2.FamilyID), "-o", uf2Path)

	out, err := p.run.Run(ctx, exe, args...)
	if err != nil {
		return fmt.Errorf("uf2 helper: %w", err)
	}
	if msg := strings.TrimSpace(string(out)); msg != "" {
		p.log.Debug("uf2 helper output", "output", msg)
	}
	return nil
}

func (p *Processor) artifact(ext string) string {
	return filepath.Join(p.cfg.Project.BuildDir, p.cfg.Project.ProgName+ext)
}

// RenderName fills the {progname}, {env} and {version} placeholders
func RenderName(pattern, progname, env, version string) string {
	return strings.NewReplacer(
		"{progname}", progname,
		"{env}", env,
		"{version}", version,
	).Replace(pattern)
}

// ConvertHex writes the UF2 form of hexPath to uf2Path. The output is
// written to a temporary file first so a failed conversion never leaves a
// truncated UF2 behind.
func ConvertHex(hexPath, uf2Path string, familyID uint32) (int, error) {
	// Path is a build artifact
	in, err := os.Open(hexPath) // #nosec G304
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	return writeAtomic(uf2Path, func(w io.Writer) (int, error) {
		return uf2.FromHex(w, in, familyID)
	})
}

// ConvertBinary writes the UF2 form of a raw binary placed at base.
func ConvertBinary(binPath, uf2Path string, base, familyID uint32) (int, error) {
	// Path is a build artifact
	data, err := os.ReadFile(binPath) // #nosec G304
	if err != nil {
		return 0, err
	}
	return writeAtomic(uf2Path, func(w io.Writer) (int, error) {
		return uf2.FromBinary(w, data, base, familyID)
	})
}

func writeAtomic(path string, write func(io.Writer) (int, error)) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kodebuild-*.tmp")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	_ = tmp.Chmod(0o644)

	n, err := write(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return n, nil
}

func copyFile(src, dst string) error {
	// Path is a build artifact
	in, err := os.Open(src) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// Path is a build artifact
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
