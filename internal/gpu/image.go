package gpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/texel-ml/texel/internal/tensor"
)

// texelBytes is the byte size of one rgba32float texel.
const texelBytes = 16

// ImageDesc describes the logical 2-D extent of an image. Every consumer
// of a packed image derives coordinates from the same desc formula used
// at creation; the packed layout is never reinterpreted.
type ImageDesc struct {
	Width  int64
	Height int64
}

// TexelCount returns the number of rgba32float texels in the image.
func (d ImageDesc) TexelCount() int64 {
	return d.Width * d.Height
}

// ByteSize returns the backing buffer size in bytes.
func (d ImageDesc) ByteSize() uint64 {
	return uint64(d.TexelCount()) * texelBytes
}

// Grid returns the launch grid covering every texel of the image,
// used by the weight copy kernels.
func (d ImageDesc) Grid() (gsx, gsy uint32) {
	return uint32(d.Width), uint32(d.Height)
}

func (d ImageDesc) String() string {
	return fmt.Sprintf("Image2D(%dx%d)", d.Width, d.Height)
}

// ImageDescFromNCHW returns the image extent holding an NCHW activation
// tensor: four consecutive channels per texel, columns within a channel
// block contiguous in x, batch stacked in y.
//
//	width  = ceil(C/4) * W
//	height = N * H
func ImageDescFromNCHW(shape tensor.Shape) (ImageDesc, error) {
	if len(shape) != 4 {
		return ImageDesc{}, fmt.Errorf("gpu: NCHW image requires rank 4, got shape %v", shape)
	}
	n, c, h, w := int64(shape[0]), int64(shape[1]), int64(shape[2]), int64(shape[3])
	return ImageDesc{Width: CeilDiv(c, 4) * w, Height: n * h}, nil
}

// ImageDescFromChannels returns the extent of a per-channel vector image
// (bias): one row of ceil(C/4) texels.
func ImageDescFromChannels(channels int64) ImageDesc {
	return ImageDesc{Width: CeilDiv(channels, 4), Height: 1}
}

// CeilDiv returns ceil(a/b) for positive b.
func CeilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// Image2D is a device-resident 2-D texel grid backed by a storage buffer
// of vec4<f32>, addressed as texels[y*width+x]. Buffers come from the
// engine's scratch pool and return to it on Release.
type Image2D struct {
	desc   ImageDesc
	buffer *wgpu.Buffer
	pool   *ScratchPool
}

const imageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// CreateImage2D allocates an uninitialized device image of the given extent.
func (e *Engine) CreateImage2D(desc ImageDesc) *Image2D {
	return &Image2D{
		desc:   desc,
		buffer: e.scratch.Acquire(desc.ByteSize(), imageUsage),
		pool:   e.scratch,
	}
}

// createImage2DFrom allocates a device image initialized with the given
// texel stream (len must be desc.TexelCount()*4 floats).
func (e *Engine) createImage2DFrom(desc ImageDesc, texels []float32) *Image2D {
	return &Image2D{
		desc:   desc,
		buffer: e.createBuffer(float32Bytes(texels), imageUsage),
		pool:   nil, // dedicated buffer, released to the device directly
	}
}

// Desc returns the image extent.
func (img *Image2D) Desc() ImageDesc {
	return img.desc
}

// Release returns the backing buffer to the scratch pool, or releases it
// to the device if the image owns a dedicated buffer.
func (img *Image2D) Release() {
	if img.buffer == nil {
		return
	}
	if img.pool != nil {
		img.pool.Release(img.buffer, img.desc.ByteSize(), imageUsage)
	} else {
		img.buffer.Release()
	}
	img.buffer = nil
}
