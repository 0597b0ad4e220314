package conv

import (
	"fmt"

	"github.com/texel-ml/texel/internal/ops"
	"github.com/texel-ml/texel/internal/tensor"
)

// AutoPadKind is the ONNX auto_pad attribute.
type AutoPadKind uint8

// auto_pad modes.
const (
	AutoPadNotSet AutoPadKind = iota
	AutoPadValid
	AutoPadSameUpper
	AutoPadSameLower
)

func autoPadFrom(s string) (AutoPadKind, error) {
	switch s {
	case "", "NOTSET":
		return AutoPadNotSet, nil
	case "VALID":
		return AutoPadValid, nil
	case "SAME_UPPER":
		return AutoPadSameUpper, nil
	case "SAME_LOWER":
		return AutoPadSameLower, nil
	default:
		return AutoPadNotSet, fmt.Errorf("conv: unknown auto_pad %q", s)
	}
}

// ConvAttributes holds the standard convolution attributes of a node.
// Spatial parameter lists may be empty; Compute defaults them per call
// (strides and dilations to ones, pads to zeros).
type ConvAttributes struct {
	AutoPad     AutoPadKind
	KernelShape []int64 // optional "kernel_shape" attribute, validated against the weight
	Strides     []int64
	Pads        []int64 // begin/end pairs: [b_1..b_r, e_1..e_r]
	Dilations   []int64
	Group       int64
}

// NewConvAttributes parses the convolution attributes of a node.
func NewConvAttributes(attrs ops.Attributes) (*ConvAttributes, error) {
	autoPad, err := autoPadFrom(attrs.String("auto_pad", "NOTSET"))
	if err != nil {
		return nil, err
	}
	group := attrs.Int("group", 1)
	if group < 1 {
		return nil, fmt.Errorf("conv: invalid group %d", group)
	}
	return &ConvAttributes{
		AutoPad:     autoPad,
		KernelShape: attrs.Ints("kernel_shape"),
		Strides:     attrs.Ints("strides"),
		Pads:        attrs.Ints("pads"),
		Dilations:   attrs.Ints("dilations"),
		Group:       group,
	}, nil
}

// ComputeKernelShape derives the kernel spatial shape from the weight
// shape and cross-checks the optional kernel_shape attribute against it.
func (a *ConvAttributes) ComputeKernelShape(weight tensor.Shape) ([]int64, error) {
	if len(weight) < 3 {
		return nil, fmt.Errorf("conv: weight rank %d is too low for a spatial kernel", len(weight))
	}
	spatial := weight.Spatial()
	k := make([]int64, len(spatial))
	for i, dim := range spatial {
		k[i] = int64(dim)
	}

	if len(a.KernelShape) > 0 {
		if len(a.KernelShape) != len(k) {
			return nil, fmt.Errorf("conv: kernel_shape rank %d does not match weight spatial rank %d",
				len(a.KernelShape), len(k))
		}
		for i := range k {
			if a.KernelShape[i] != k[i] {
				return nil, fmt.Errorf("conv: kernel_shape %v does not match weight spatial dims %v",
					a.KernelShape, k)
			}
		}
	}
	return k, nil
}

// ValidateInputShape checks channel compatibility and rank agreement
// between the runtime input and the stored weight shape.
func (a *ConvAttributes) ValidateInputShape(x, weight tensor.Shape) error {
	if len(x) != len(weight) {
		return fmt.Errorf("conv: input rank %d does not match weight rank %d", len(x), len(weight))
	}
	if len(x) < 3 {
		return fmt.Errorf("conv: input rank %d is too low", len(x))
	}
	cIn := int64(x[1])
	if cIn != int64(weight[1])*a.Group {
		return fmt.Errorf("conv: input channels %d != weight channels %d * group %d",
			cIn, weight[1], a.Group)
	}
	if int64(weight[0])%a.Group != 0 {
		return fmt.Errorf("conv: output channels %d not divisible by group %d", weight[0], a.Group)
	}
	return nil
}

// spatialDefaults pads S and D to ones and P to zeros for the given rank.
func (a *ConvAttributes) spatialDefaults(rank int) (s, p, d []int64, err error) {
	s = append([]int64(nil), a.Strides...)
	if len(s) == 0 {
		s = ones(rank)
	}
	d = append([]int64(nil), a.Dilations...)
	if len(d) == 0 {
		d = ones(rank)
	}
	p = append([]int64(nil), a.Pads...)
	if len(p) == 0 {
		p = make([]int64, 2*rank)
	}
	if len(s) != rank || len(d) != rank {
		return nil, nil, nil, fmt.Errorf("conv: strides/dilations rank mismatch: got %d/%d, want %d",
			len(s), len(d), rank)
	}
	if len(p) != 2*rank {
		return nil, nil, nil, fmt.Errorf("conv: pads length %d, want %d", len(p), 2*rank)
	}
	return s, p, d, nil
}

// InferOutputShape computes the output spatial shape using the standard
// convolution output-size formula, resolving auto_pad by rewriting pads
// in place for the SAME modes and zeroing them for VALID.
func (a *ConvAttributes) InferOutputShape(inSpatial, k, s, d []int64, pads []int64) ([]int64, error) {
	rank := len(inSpatial)
	out := make([]int64, rank)

	for i := 0; i < rank; i++ {
		in := inSpatial[i]
		window := d[i]*(k[i]-1) + 1

		switch a.AutoPad {
		case AutoPadValid:
			pads[i], pads[rank+i] = 0, 0
		case AutoPadSameUpper, AutoPadSameLower:
			out[i] = ceilDiv(in, s[i])
			total := (out[i]-1)*s[i] + window - in
			if total < 0 {
				total = 0
			}
			if a.AutoPad == AutoPadSameLower {
				pads[i] = (total + 1) / 2
			} else {
				pads[i] = total / 2
			}
			pads[rank+i] = total - pads[i]
			continue
		}

		o := (in+pads[i]+pads[rank+i]-window)/s[i] + 1
		if o <= 0 {
			return nil, fmt.Errorf("conv: non-positive output dim %d for axis %d (in=%d k=%d s=%d p=%d/%d d=%d)",
				o, i, in, k[i], s[i], pads[i], pads[rank+i], d[i])
		}
		out[i] = o
	}
	return out, nil
}

func ones(n int) []int64 {
	v := make([]int64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
