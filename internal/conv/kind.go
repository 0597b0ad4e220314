package conv

import (
	"fmt"

	"github.com/texel-ml/texel/internal/ops"
)

// ConvKind selects the execution strategy of a conv kernel instance.
// It is decided once from the filter's declared shape at construction
// and never changes afterwards.
type ConvKind uint8

// Execution strategies.
const (
	// Generic handles any supported convolution. Always correct,
	// not always fastest.
	Generic ConvKind = iota
	// Depthwise handles channel multiplier 1: each output channel
	// depends on exactly one input channel.
	Depthwise
)

func (k ConvKind) String() string {
	switch k {
	case Generic:
		return "Generic"
	case Depthwise:
		return "Depthwise"
	default:
		return fmt.Sprintf("ConvKind(%d)", uint8(k))
	}
}

// Classify decides the execution strategy from the filter's declared
// {C_out, C_in_per_group, K_h, K_w} shape and the group count.
//
// Depthwise requires both channels-out-per-group and channels-in-per-group
// to equal 1. A declared shape without static channel dimensions returns
// ErrDynamicDim; the caller falls back to Generic, which is a recoverable
// degradation rather than a failure.
func Classify(weight ops.DeclaredShape, group int64) (ConvKind, error) {
	if !weight.Known(0) {
		return Generic, fmt.Errorf("%w: filter channel out", ErrDynamicDim)
	}
	coPerGroup := weight.Dim(0) / group

	if !weight.Known(1) {
		return Generic, fmt.Errorf("%w: filter channel in", ErrDynamicDim)
	}
	ciPerGroup := weight.Dim(1)

	if ciPerGroup == 1 && coPerGroup == 1 {
		return Depthwise, nil
	}
	return Generic, nil
}
