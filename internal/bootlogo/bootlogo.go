// Package bootlogo stages the branding boot logo into the filesystem image
// for builds with a TFT display.
package bootlogo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kodedot/kodebuild/internal/config"
	"github.com/kodedot/kodebuild/internal/flags"
	"github.com/kodedot/kodebuild/internal/logger"
)

// Macro names read from the build defines
const (
	DisplaySizeDefine = "DISPLAY_SIZE"
	HasTFTDefine      = "HAS_TFT"
)

// DestName is the file name the firmware loads at boot.
const DestName = "logo.png"

// ErrBadResolution is returned for a DISPLAY_SIZE that is not WxH
var ErrBadResolution = errors.New("invalid display resolution")

// Outcome describes what Install did
type Outcome int

const (
	// Skipped means the build has no TFT; nothing was touched.
	Skipped Outcome = iota
	// NoAsset means no matching branding asset exists; nothing was touched.
	NoAsset
	// Copied means the exact-size asset was copied.
	Copied
	// Scaled means another asset was scaled to the display size.
	Scaled
)

func (o Outcome) String() string {
	switch o {
	case NoAsset:
		return "no-asset"
	case Copied:
		return "copied"
	case Scaled:
		return "scaled"
	default:
		return "skipped"
	}
}

// Result reports the install outcome
type Result struct {
	Outcome Outcome
	Width   int
	Height  int
	Source  string
	Dest    string
}

// Resolution returns the display size declared by DISPLAY_SIZE=WxH, or the
// fallback when the define is absent or malformed.
func Resolution(defs flags.Defines, fallbackW, fallbackH int) (int, int, error) {
	v, ok := defs.Lookup(DisplaySizeDefine)
	if !ok {
		return fallbackW, fallbackH, nil
	}
	w, h, err := ParseResolution(v)
	if err != nil {
		return fallbackW, fallbackH, err
	}
	return w, h, nil
}

// ParseResolution parses "WxH"
func ParseResolution(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadResolution, s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadResolution, s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadResolution, s)
	}
	return w, h, nil
}

// AssetName returns the branding file name for a resolution
func AssetName(w, h int) string {
	return fmt.Sprintf("logo_%dx%d.png", w, h)
}

// Installer copies branding assets into the boot directory
type Installer struct {
	cfg *config.Config
	log *logger.Logger
}

// NewInstaller creates an Installer
func NewInstaller(cfg *config.Config, log *logger.Logger) *Installer {
	return &Installer{cfg: cfg, log: log.Step("bootlogo")}
}

// Install stages the logo for the declared display size. It only acts when
// HAS_TFT=1, and writes nothing when no suitable asset exists.
func (in *Installer) Install(defs flags.Defines) (Result, error) {
	if !defs.Enabled(HasTFTDefine) {
		in.log.Debug("Not a TFT build, skipping boot logo")
		return Result{Outcome: Skipped}, nil
	}

	w, h, err := Resolution(defs, in.cfg.Logo.DefaultWidth, in.cfg.Logo.DefaultHeight)
	if err != nil {
		in.log.Warnf("Ignoring display size, using %dx%d: %v", w, h, err)
	}
	in.log.Infof("TFT build with %dx%d resolution detected", w, h)

	res := Result{Outcome: NoAsset, Width: w, Height: h}
	brandingDir := in.cfg.ProjectPath(in.cfg.Paths.BrandingDir)
	bootDir := in.cfg.ProjectPath(in.cfg.Paths.BootDir)
	dest := filepath.Join(bootDir, DestName)

	src := filepath.Join(brandingDir, AssetName(w, h))
	if fileExists(src) {
		in.log.Info("Loading boot logo", "source", src)
		if err := prepareDest(bootDir, dest); err != nil {
			return res, err
		}
		if err := copyFile(src, dest); err != nil {
			return res, fmt.Errorf("failed to copy boot logo: %w", err)
		}
		res.Outcome, res.Source, res.Dest = Copied, src, dest
		return res, nil
	}

	if !in.cfg.Logo.Fit {
		in.log.Debug("No boot logo for resolution", "expected", src)
		return res, nil
	}

	cand, ok := FindLargest(brandingDir)
	if !ok {
		in.log.Debug("No branding logos to scale", "dir", brandingDir)
		return res, nil
	}

	in.log.Info("Scaling boot logo", "source", cand, "width", w, "height", h)
	img, err := decodePNG(cand)
	if err != nil {
		return res, err
	}
	if err := prepareDest(bootDir, dest); err != nil {
		return res, err
	}
	if err := writePNG(dest, Scale(img, w, h)); err != nil {
		return res, err
	}
	res.Outcome, res.Source, res.Dest = Scaled, cand, dest
	return res, nil
}

// prepareDest creates the boot directory and removes a stale logo
func prepareDest(dir, dest string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale logo: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func copyFile(src, dst string) error {
	// Path is a project asset
	in, err := os.Open(src) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// Path is inside the project data directory
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
