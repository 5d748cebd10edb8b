package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestTensorShape(t *testing.T) {
	out := Tensor(solidImage(832, 320, color.RGBA{R: 10, G: 20, B: 30, A: 255}))
	require.Equal(t, 3, out.Channels)
	require.Equal(t, InputSize, out.Height)
	require.Equal(t, InputSize, out.Width)
	require.NoError(t, out.Validate())
}

func TestTensorNormalizesWithImageNetStats(t *testing.T) {
	// Pure red: R channel is (1 - 0.485) / 0.229, G is (0 - 0.456) / 0.224,
	// B is (0 - 0.406) / 0.225.
	out := Tensor(solidImage(64, 64, color.RGBA{R: 255, A: 255}))

	require.InDelta(t, 2.2489, out.At(0, 112, 112), 1e-2)
	require.InDelta(t, -2.0357, out.At(1, 112, 112), 1e-2)
	require.InDelta(t, -1.8044, out.At(2, 112, 112), 1e-2)
}

func TestTensorSolidInputIsUniform(t *testing.T) {
	out := Tensor(solidImage(100, 50, color.RGBA{R: 128, G: 128, B: 128, A: 255}))

	for c := 0; c < 3; c++ {
		ref := out.At(c, 0, 0)
		for y := 0; y < InputSize; y += 31 {
			for x := 0; x < InputSize; x += 31 {
				require.InDelta(t, ref, out.At(c, y, x), 1e-2)
			}
		}
	}
}

func TestTensorStretchesWithoutPreservingAspect(t *testing.T) {
	// Left half red, right half blue, extreme aspect ratio. The stretch to
	// a square must keep red on the left and blue on the right.
	img := image.NewRGBA(image.Rect(0, 0, 400, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 400; x++ {
			if x < 200 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}

	out := Tensor(img)
	// Red channel dominates on the left edge, blue on the right edge
	require.Greater(t, out.At(0, 112, 4), out.At(2, 112, 4))
	require.Greater(t, out.At(2, 112, InputSize-5), out.At(0, 112, InputSize-5))
}
