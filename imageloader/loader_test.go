package imageloader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame_1.png")
	writeTestPNG(t, path, 64, 32)

	img, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "frame_404.png"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame_1.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestIsFrameFile(t *testing.T) {
	require.True(t, IsFrameFile("frame_1.png"))
	require.True(t, IsFrameFile("frame_1.JPG"))
	require.True(t, IsFrameFile("/some/dir/frame_2.tiff"))
	require.False(t, IsFrameFile("frame_1.txt"))
	require.False(t, IsFrameFile("frame_1"))
}
