// Package extractor produces multi-layer feature embeddings for frames
// using a pretrained ResNet-18 backbone run through the OpenCV DNN module.
package extractor

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/logging"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/preprocess"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/tensor"
)

// DefaultOutputLayers are the five stage activations of a standard
// torchvision ResNet-18 ONNX export: the stem ReLU plus the last ReLU of
// each residual stage. Exports with different node naming can override
// these through configuration.
var DefaultOutputLayers = []string{
	"/relu/Relu_output_0",
	"/layer1/layer1.1/relu_1/Relu_output_0",
	"/layer2/layer2.1/relu_1/Relu_output_0",
	"/layer3/layer3.1/relu_1/Relu_output_0",
	"/layer4/layer4.1/relu_1/Relu_output_0",
}

// DefaultChannels are the channel counts of the five ResNet-18 stages, used
// to catch a model/layer-name mismatch at extraction time.
var DefaultChannels = []int{64, 64, 128, 256, 512}

// Options configures a ResNetExtractor.
type Options struct {
	// ModelPath locates the ONNX export of the pretrained backbone.
	ModelPath string

	// Backend selects the DNN compute backend: "cuda" or "cpu". An
	// unavailable CUDA backend falls back to the portable CPU path.
	Backend string

	// OutputLayers overrides DefaultOutputLayers when non-empty.
	OutputLayers []string

	// ExpectedChannels overrides DefaultChannels when non-empty. An empty
	// slice with custom OutputLayers disables the per-layer channel check.
	ExpectedChannels []int
}

// ResNetExtractor extracts intermediate activations from a frozen ResNet-18.
// The weights are loaded once at construction and never mutated afterwards;
// the net handle itself is not reentrant, so concurrent pipelines use one
// extractor per worker.
type ResNetExtractor struct {
	net      gocv.Net
	layers   []string
	channels []int
	mu       sync.Mutex
}

// NewResNetExtractor loads the ONNX model at opts.ModelPath and prepares it
// for inference on the selected backend.
func NewResNetExtractor(opts Options) (*ResNetExtractor, error) {
	if opts.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}

	net := gocv.ReadNetFromONNX(opts.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("cannot load ONNX model from %s", opts.ModelPath)
	}

	selectBackend(&net, opts.Backend)

	layers := opts.OutputLayers
	if len(layers) == 0 {
		layers = DefaultOutputLayers
	}
	channels := opts.ExpectedChannels
	if len(opts.OutputLayers) == 0 && len(channels) == 0 {
		channels = DefaultChannels
	}
	if len(channels) > 0 && len(channels) != len(layers) {
		net.Close()
		return nil, fmt.Errorf("expected channel list has %d entries for %d output layers",
			len(channels), len(layers))
	}

	return &ResNetExtractor{net: net, layers: layers, channels: channels}, nil
}

// selectBackend applies the requested compute backend, falling back to the
// portable default when the accelerated one cannot be enabled. This is a
// one-time decision at construction, not per frame.
func selectBackend(net *gocv.Net, backend string) {
	if backend != "cuda" {
		return
	}
	if err := net.SetPreferableBackend(gocv.NetBackendCUDA); err != nil {
		logging.LogWarning("CUDA backend unavailable, falling back to CPU: %v", err)
		return
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCUDA); err != nil {
		logging.LogWarning("CUDA target unavailable, falling back to CPU: %v", err)
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
	}
}

// Extract runs one forward pass and returns the configured stage
// activations in network order. The pass is deterministic for fixed
// weights; nothing in the net is updated.
func (e *ResNetExtractor) Extract(img image.Image) ([]tensor.FeatureMap, error) {
	blob, err := blobFromTensor(preprocess.Tensor(img))
	if err != nil {
		return nil, fmt.Errorf("cannot build input blob: %w", err)
	}
	defer blob.Close()

	e.mu.Lock()
	e.net.SetInput(blob, "")
	outputs := e.net.ForwardLayers(e.layers)
	e.mu.Unlock()

	maps := make([]tensor.FeatureMap, 0, len(outputs))
	for i := range outputs {
		fm, convErr := matToFeatureMap(outputs[i])
		outputs[i].Close()
		if convErr != nil {
			closeRemaining(outputs[i+1:])
			return nil, fmt.Errorf("layer %s: %w", e.layers[i], convErr)
		}
		if len(e.channels) > 0 && fm.Channels != e.channels[i] {
			closeRemaining(outputs[i+1:])
			return nil, fmt.Errorf("layer %s has %d channels, expected %d",
				e.layers[i], fm.Channels, e.channels[i])
		}
		maps = append(maps, fm)
	}

	if len(maps) != len(e.layers) {
		return nil, fmt.Errorf("network returned %d layers, expected %d", len(maps), len(e.layers))
	}
	return maps, nil
}

// Close releases the underlying network.
func (e *ResNetExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}

// blobFromTensor packs a preprocessed 3x224x224 tensor into an NCHW float32
// blob with a leading batch dimension of 1.
func blobFromTensor(t tensor.FeatureMap) (gocv.Mat, error) {
	buf := make([]byte, 4*len(t.Data))
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	sizes := []int{1, t.Channels, t.Height, t.Width}
	return gocv.NewMatWithSizesFromBytes(sizes, gocv.MatTypeCV32F, buf)
}

// matToFeatureMap copies a 4-D NCHW network output into a FeatureMap. The
// Mat's buffer is owned by OpenCV, so the data is copied out before the Mat
// is closed by the caller.
func matToFeatureMap(m gocv.Mat) (tensor.FeatureMap, error) {
	sizes := m.Size()
	if len(sizes) != 4 || sizes[0] != 1 {
		return tensor.FeatureMap{}, fmt.Errorf("unexpected output shape %v, want 1xCxHxW", sizes)
	}

	data, err := m.DataPtrFloat32()
	if err != nil {
		return tensor.FeatureMap{}, fmt.Errorf("cannot access output data: %w", err)
	}

	fm := tensor.NewFeatureMap(sizes[1], sizes[2], sizes[3])
	copy(fm.Data, data)
	return fm, nil
}

func closeRemaining(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
