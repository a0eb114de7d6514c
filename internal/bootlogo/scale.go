package bootlogo

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// FindLargest returns the branding logo with the largest area whose file
// name follows logo_<W>x<H>.png.
func FindLargest(dir string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, "logo_*x*.png"))
	if err != nil {
		return "", false
	}

	best, bestArea := "", 0
	for _, m := range matches {
		var w, h int
		if _, err := fmt.Sscanf(filepath.Base(m), "logo_%dx%d.png", &w, &h); err != nil {
			continue
		}
		if area := w * h; area > bestArea && fileExists(m) {
			best, bestArea = m, area
		}
	}
	return best, best != ""
}

// Scale resizes img to exactly w×h
func Scale(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func decodePNG(path string) (image.Image, error) {
	// Path is a project asset
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	// Path is inside the project data directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G304
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
