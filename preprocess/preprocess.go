// Package preprocess converts decoded frames into the normalized input
// tensor the feature extractor expects.
package preprocess

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
)

// InputSize is the fixed spatial resolution of the extractor input. Frames
// are stretched to this size; aspect ratio is deliberately not preserved.
const InputSize = 224

// ImageNet per-channel statistics the backbone was trained with, RGB order.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Tensor resizes img to InputSize x InputSize with bilinear resampling,
// scales intensities to [0,1] and normalizes each channel with the ImageNet
// mean and standard deviation. The result is a 3 x 224 x 224 feature map in
// RGB channel order, ready to be packed into a DNN input blob.
func Tensor(img image.Image) tensor.FeatureMap {
	resized := image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := tensor.NewFeatureMap(3, InputSize, InputSize)
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			px := resized.RGBAAt(x, y)
			for c, v := range [3]uint8{px.R, px.G, px.B} {
				out.Set(c, y, x, (float32(v)/255.0-imagenetMean[c])/imagenetStd[c])
			}
		}
	}
	return out
}
