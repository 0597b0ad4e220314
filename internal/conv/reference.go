package conv

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/texel-ml/texel/internal/tensor"
)

// ReferenceConv2D computes a float32 convolution on the CPU by im2col and
// a dense matrix product, one (batch, group) pair at a time. It is the
// correctness oracle for the device kernels; no attempt is made to be
// fast.
func ReferenceConv2D(x, w *tensor.RawTensor, bias []float32, strides, pads, dilations []int64, group int64, act FusedActivation) (*tensor.RawTensor, error) {
	xs, ws := x.Shape(), w.Shape()
	if len(xs) != 4 || len(ws) != 4 {
		return nil, fmt.Errorf("conv: reference requires rank-4 tensors, got %v and %v", xs, ws)
	}
	n, cIn, inH, inW := int64(xs[0]), int64(xs[1]), int64(xs[2]), int64(xs[3])
	cOut, ciPerGroup, kH, kW := int64(ws[0]), int64(ws[1]), int64(ws[2]), int64(ws[3])
	if cIn != ciPerGroup*group || cOut%group != 0 {
		return nil, fmt.Errorf("conv: reference channel mismatch: C_in=%d weight=%v group=%d", cIn, ws, group)
	}
	if bias != nil && int64(len(bias)) != cOut {
		return nil, fmt.Errorf("conv: reference bias length %d, want %d", len(bias), cOut)
	}

	outH := (inH+pads[0]+pads[2]-(dilations[0]*(kH-1)+1))/strides[0] + 1
	outW := (inW+pads[1]+pads[3]-(dilations[1]*(kW-1)+1))/strides[1] + 1
	if outH <= 0 || outW <= 0 {
		return nil, fmt.Errorf("conv: reference non-positive output %dx%d", outH, outW)
	}

	coPerGroup := cOut / group
	xData := x.Float32s()
	wData := w.Float32s()
	out := make([]float32, n*cOut*outH*outW)

	patchRows := ciPerGroup * kH * kW
	cols := make([]float64, patchRows*outH*outW)

	for b := int64(0); b < n; b++ {
		for g := int64(0); g < group; g++ {
			// im2col for this (batch, group) slice.
			for ci := int64(0); ci < ciPerGroup; ci++ {
				src := ((b*cIn + g*ciPerGroup + ci) * inH) * inW
				for kh := int64(0); kh < kH; kh++ {
					for kw := int64(0); kw < kW; kw++ {
						row := (ci*kH+kh)*kW + kw
						for oh := int64(0); oh < outH; oh++ {
							ih := oh*strides[0] - pads[0] + kh*dilations[0]
							for ow := int64(0); ow < outW; ow++ {
								iw := ow*strides[1] - pads[1] + kw*dilations[1]
								var v float64
								if ih >= 0 && ih < inH && iw >= 0 && iw < inW {
									v = float64(xData[src+ih*inW+iw])
								}
								cols[row*(outH*outW)+oh*outW+ow] = v
							}
						}
					}
				}
			}

			filt := make([]float64, coPerGroup*patchRows)
			for co := int64(0); co < coPerGroup; co++ {
				base := (g*coPerGroup + co) * patchRows
				for i := int64(0); i < patchRows; i++ {
					filt[co*patchRows+i] = float64(wData[base+i])
				}
			}

			var prod mat.Dense
			prod.Mul(
				mat.NewDense(int(coPerGroup), int(patchRows), filt),
				mat.NewDense(int(patchRows), int(outH*outW), cols))

			for co := int64(0); co < coPerGroup; co++ {
				channel := g*coPerGroup + co
				var add float32
				if bias != nil {
					add = bias[channel]
				}
				dst := ((b*cOut + channel) * outH) * outW
				for i := int64(0); i < outH*outW; i++ {
					out[dst+i] = act.apply(float32(prod.At(int(co), int(i))) + add)
				}
			}
		}
	}

	return tensor.FromFloat32(out, tensor.Shape{int(n), int(cOut), int(outH), int(outW)})
}

// apply evaluates the fused activation on the host, mirroring the
// device-side activate().
func (a FusedActivation) apply(v float32) float32 {
	switch a.Kind {
	case ActivationReLU:
		if v < 0 {
			return 0
		}
		return v
	case ActivationClip:
		// Clip always carries both bounds; see LoadFusedActivation.
		if v < a.Param0 {
			return a.Param0
		}
		if v > a.Param1 {
			return a.Param1
		}
		return v
	default:
		return v
	}
}
