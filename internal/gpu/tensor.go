package gpu

import (
	"fmt"

	"github.com/texel-ml/texel/internal/tensor"
)

// Tensor is a device-resident tensor: an Image2D plus the logical NCHW
// shape it was packed from. Operations hand Tensors between each other
// without readbacks; ReadNCHW transfers the data home.
type Tensor struct {
	image *Image2D
	shape tensor.Shape
}

// NewTensor wraps an existing image and its logical shape.
func NewTensor(image *Image2D, shape tensor.Shape) *Tensor {
	return &Tensor{image: image, shape: shape.Clone()}
}

// Shape returns the logical NCHW shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.shape
}

// Image returns the backing device image.
func (t *Tensor) Image() *Image2D {
	return t.image
}

// Release frees the backing image.
func (t *Tensor) Release() {
	if t.image != nil {
		t.image.Release()
		t.image = nil
	}
}

// UploadNCHW transfers a host NCHW float32 tensor to a device image.
func (e *Engine) UploadNCHW(src *tensor.RawTensor) (*Tensor, error) {
	if src.DType() != tensor.Float32 {
		return nil, fmt.Errorf("gpu: only float32 is supported, got %s", src.DType())
	}
	desc, err := ImageDescFromNCHW(src.Shape())
	if err != nil {
		return nil, err
	}
	texels := packNCHWTexels(src.Float32s(), src.Shape())
	return NewTensor(e.createImage2DFrom(desc, texels), src.Shape()), nil
}

// UploadChannels transfers a per-channel host vector (bias) to a
// single-row device image.
func (e *Engine) UploadChannels(src *tensor.RawTensor) (*Tensor, error) {
	if src.DType() != tensor.Float32 {
		return nil, fmt.Errorf("gpu: only float32 is supported, got %s", src.DType())
	}
	if len(src.Shape()) != 1 {
		return nil, fmt.Errorf("gpu: channel vector requires rank 1, got shape %v", src.Shape())
	}
	desc := ImageDescFromChannels(int64(src.Shape()[0]))
	texels := packChannelTexels(src.Float32s())
	return NewTensor(e.createImage2DFrom(desc, texels), src.Shape()), nil
}

// ReadNCHW transfers a device tensor back to a host NCHW tensor.
// Blocks until the device has produced the data.
func (e *Engine) ReadNCHW(t *Tensor) (*tensor.RawTensor, error) {
	if len(t.shape) != 4 {
		return nil, fmt.Errorf("gpu: NCHW readback requires rank 4, got shape %v", t.shape)
	}
	raw, err := e.readBuffer(t.image.buffer, t.image.desc.ByteSize())
	if err != nil {
		return nil, err
	}
	return tensor.FromFloat32(unpackNCHWTexels(bytesFloat32(raw), t.shape), t.shape)
}

// ReadImage reads the raw texel stream of an image. Intended for
// verification tooling; regular consumers use ReadNCHW.
func (e *Engine) ReadImage(img *Image2D) ([]float32, error) {
	raw, err := e.readBuffer(img.buffer, img.desc.ByteSize())
	if err != nil {
		return nil, err
	}
	out := make([]float32, img.desc.TexelCount()*4)
	copy(out, bytesFloat32(raw))
	return out, nil
}
