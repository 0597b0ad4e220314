package conv

import (
	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/tensor"
)

// Weight image layouts. The constants of these formulas are baked into
// the copy kernels and the conv kernels; every consumer re-derives
// coordinates from the same desc instead of reinterpreting packed bytes.

// PackFromConv2DWeight returns the image extent for a generic filter
// {C_out, C_in, K_h, K_w}:
//
//	width  = C_in * K_h * K_w    (x = (ci*K_h + kh)*K_w + kw)
//	height = ceil(C_out/4)       (texel lanes span four output channels)
func PackFromConv2DWeight(shape tensor.Shape) gpu.ImageDesc {
	co, ci, kh, kw := int64(shape[0]), int64(shape[1]), int64(shape[2]), int64(shape[3])
	return gpu.ImageDesc{Width: ci * kh * kw, Height: gpu.CeilDiv(co, 4)}
}

// PackFromDepthwiseConv2DWeight returns the image extent for a depthwise
// filter {C_out, 1, K_h, K_w}:
//
//	width  = K_h * K_w           (x = kh*K_w + kw, channel factor elided)
//	height = ceil(C_out/4)
func PackFromDepthwiseConv2DWeight(shape tensor.Shape) gpu.ImageDesc {
	co, kh, kw := int64(shape[0]), int64(shape[2]), int64(shape[3])
	return gpu.ImageDesc{Width: kh * kw, Height: gpu.CeilDiv(co, 4)}
}

// Host mirrors of the weight copy kernels. The packer runs the copy on
// the device; these mirrors back the layout round-trip tests and the
// CLI selftest verification.

func packGenericWeightTexels(w []float32, shape tensor.Shape) []float32 {
	co, ci, kh, kw := shape[0], shape[1], shape[2], shape[3]
	desc := PackFromConv2DWeight(shape)
	texels := make([]float32, desc.TexelCount()*4)

	khw := kh * kw
	width := int(desc.Width)
	for coIdx := 0; coIdx < co; coIdx++ {
		y, lane := coIdx/4, coIdx%4
		for ciIdx := 0; ciIdx < ci; ciIdx++ {
			for r := 0; r < khw; r++ {
				x := ciIdx*khw + r
				texels[(y*width+x)*4+lane] = w[(coIdx*ci+ciIdx)*khw+r]
			}
		}
	}
	return texels
}

func unpackGenericWeightTexels(texels []float32, shape tensor.Shape) []float32 {
	co, ci, kh, kw := shape[0], shape[1], shape[2], shape[3]
	width := int(PackFromConv2DWeight(shape).Width)
	khw := kh * kw

	w := make([]float32, co*ci*khw)
	for coIdx := 0; coIdx < co; coIdx++ {
		y, lane := coIdx/4, coIdx%4
		for ciIdx := 0; ciIdx < ci; ciIdx++ {
			for r := 0; r < khw; r++ {
				x := ciIdx*khw + r
				w[(coIdx*ci+ciIdx)*khw+r] = texels[(y*width+x)*4+lane]
			}
		}
	}
	return w
}

func packDepthwiseWeightTexels(w []float32, shape tensor.Shape) []float32 {
	co, kh, kw := shape[0], shape[2], shape[3]
	desc := PackFromDepthwiseConv2DWeight(shape)
	texels := make([]float32, desc.TexelCount()*4)

	khw := kh * kw
	for coIdx := 0; coIdx < co; coIdx++ {
		y, lane := coIdx/4, coIdx%4
		for r := 0; r < khw; r++ {
			texels[(y*khw+r)*4+lane] = w[coIdx*khw+r]
		}
	}
	return texels
}

func unpackDepthwiseWeightTexels(texels []float32, shape tensor.Shape) []float32 {
	co, kh, kw := shape[0], shape[2], shape[3]
	khw := kh * kw

	w := make([]float32, co*khw)
	for coIdx := 0; coIdx < co; coIdx++ {
		y, lane := coIdx/4, coIdx%4
		for r := 0; r < khw; r++ {
			w[coIdx*khw+r] = texels[(y*khw+r)*4+lane]
		}
	}
	return w
}
