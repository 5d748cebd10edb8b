// Package imageloader decodes frame images from disk. Rendered frames are
// normally PNG, but the decoders cover the formats a rendering pipeline may
// emit so a run does not fail on a re-encoded sequence.
package imageloader

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load opens and decodes the image at path into a canonical RGB-capable
// representation. Decode failures are reported as input I/O errors for the
// frame; the caller decides whether to skip or abort.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode image %s: %w", path, err)
	}
	return img, nil
}

// IsFrameFile checks whether a file extension belongs to a decodable frame.
func IsFrameFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}
