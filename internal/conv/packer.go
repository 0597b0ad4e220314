package conv

import (
	"fmt"

	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/tensor"
)

// PackedWeight is the kernel's only weight representation after prepack:
// an exclusively owned device image plus the logical 4-D shape it was
// packed from. It is written exactly once, before any Compute call, and
// read-only afterwards, so concurrent Compute calls are safe without
// locking.
type PackedWeight struct {
	Image *gpu.Image2D
	Shape tensor.Shape // {C_out, C_in_per_group, K_h, K_w}
}

// Release frees the device image. Must be called when the owning kernel
// instance is destroyed; the packed weight is never serialized and is
// rebuilt from the source tensor on every process start.
func (pw *PackedWeight) Release() {
	if pw.Image != nil {
		pw.Image.Release()
		pw.Image = nil
	}
}

// PackWeight transforms a linear filter tensor into its texture layout.
// Invoked exactly once per kernel instance, synchronously, before any
// inference call touches the weight: the staging buffer and the source
// tensor are not guaranteed to outlive the call, so the copy is fully
// complete, not merely enqueued, when PackWeight returns.
//
// Device and transfer errors propagate verbatim; packing is a one-time
// startup operation where retry offers no value over surfacing the error.
func PackWeight(e *gpu.Engine, kind ConvKind, src *tensor.RawTensor) (*PackedWeight, error) {
	shape := src.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("conv: weight must be {C_out, C_in, K_h, K_w}, got %v", shape)
	}
	if src.DType() != tensor.Float32 {
		return nil, fmt.Errorf("conv: only float32 weights are supported, got %s", src.DType())
	}

	switch kind {
	case Depthwise:
		return packDepthwiseWeight(e, src)
	default:
		return packGenericWeight(e, src)
	}
}

func packGenericWeight(e *gpu.Engine, src *tensor.RawTensor) (*PackedWeight, error) {
	shape := src.Shape()
	co, ci, kh, kw := int64(shape[0]), int64(shape[1]), int64(shape[2]), int64(shape[3])

	desc := PackFromConv2DWeight(shape)
	img := e.CreateImage2D(desc)

	staging := e.UploadBytes(src.Data())
	defer staging.Release()

	gsx, gsy := desc.Grid()
	err := e.Launcher(kernelCopyGenericWeight, copyGenericWeightShader).
		Int2(desc.Width, desc.Height).
		Int32(co).Int32(ci).Int32(kh).Int32(kw).
		Int32(kh*kw).
		Buffer(staging).
		Images(img).
		Launch(gsx, gsy)
	if err != nil {
		img.Release()
		return nil, err
	}

	// Block until the copy completes: staging and src go away after this call.
	if err := e.Wait(); err != nil {
		img.Release()
		return nil, err
	}

	return &PackedWeight{Image: img, Shape: shape.Clone()}, nil
}

func packDepthwiseWeight(e *gpu.Engine, src *tensor.RawTensor) (*PackedWeight, error) {
	shape := src.Shape()
	if shape[1] != 1 {
		// The classifier guarantees this; a violation means the kind and
		// the packer disagree and the result would be silently wrong.
		panic(fmt.Sprintf("conv: depthwise pack requires input channel per group 1, got %d", shape[1]))
	}
	co, ci, kh, kw := int64(shape[0]), int64(shape[1]), int64(shape[2]), int64(shape[3])

	desc := PackFromDepthwiseConv2DWeight(shape)
	img := e.CreateImage2D(desc)

	staging := e.UploadBytes(src.Data())
	defer staging.Release()

	gsx, gsy := desc.Grid()
	err := e.Launcher(kernelCopyDepthwiseWeight, copyDepthwiseWeightShader).
		Int2(desc.Width, desc.Height).
		Int32(co).Int32(ci).Int32(kh).Int32(kw).
		Int32(kh*kw). // C_in per group is 1, so the stride hint drops the channel factor
		Buffer(staging).
		Images(img).
		Launch(gsx, gsy)
	if err != nil {
		img.Release()
		return nil, err
	}

	if err := e.Wait(); err != nil {
		img.Release()
		return nil, err
	}

	return &PackedWeight{Image: img, Shape: shape.Clone()}, nil
}
