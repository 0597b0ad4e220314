package gpu

import (
	"unsafe"

	"github.com/texel-ml/texel/internal/tensor"
)

// Host-side mirrors of the image layouts. Uploads and readbacks rearrange
// on the host; the weight copy kernels implement the same mapping on the
// device (see the conv package).

// packNCHWTexels rearranges a row-major NCHW float32 tensor into the
// activation image layout of ImageDescFromNCHW. Texel (cb*W+w, n*H+h)
// holds channels 4cb..4cb+3 of element (n,h,w); lanes past C are zero.
func packNCHWTexels(data []float32, shape tensor.Shape) []float32 {
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	cBlocks := int(CeilDiv(int64(c), 4))
	width := cBlocks * w

	texels := make([]float32, width*n*h*4)
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			cb, lane := ci/4, ci%4
			for hi := 0; hi < h; hi++ {
				y := ni*h + hi
				src := ((ni*c+ci)*h + hi) * w
				for wi := 0; wi < w; wi++ {
					x := cb*w + wi
					texels[(y*width+x)*4+lane] = data[src+wi]
				}
			}
		}
	}
	return texels
}

// unpackNCHWTexels is the inverse of packNCHWTexels.
func unpackNCHWTexels(texels []float32, shape tensor.Shape) []float32 {
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	width := int(CeilDiv(int64(c), 4)) * w

	data := make([]float32, n*c*h*w)
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			cb, lane := ci/4, ci%4
			for hi := 0; hi < h; hi++ {
				y := ni*h + hi
				dst := ((ni*c+ci)*h + hi) * w
				for wi := 0; wi < w; wi++ {
					x := cb*w + wi
					data[dst+wi] = texels[(y*width+x)*4+lane]
				}
			}
		}
	}
	return data
}

// packChannelTexels rearranges a per-channel vector (bias) into a single
// image row of ceil(C/4) texels.
func packChannelTexels(data []float32) []float32 {
	texels := make([]float32, CeilDiv(int64(len(data)), 4)*4)
	copy(texels, data)
	return texels
}

func float32Bytes(values []float32) []byte {
	if len(values) == 0 {
		return nil
	}
	//nolint:gosec // zero-copy view for buffer upload
	return unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*4)
}

func bytesFloat32(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // zero-copy view over readback bytes
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), len(data)/4)
}
