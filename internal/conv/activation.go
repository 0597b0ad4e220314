// Package conv implements the texture-path 2-D convolution kernel: kind
// classification, one-time weight packing into device images, and the
// per-inference dispatch over the specialized kernel variants.
package conv

import (
	"fmt"
	"math"

	"github.com/texel-ml/texel/internal/ops"
)

// ActivationKind identifies the nonlinearity fused into a kernel launch.
// The numeric values are part of the kernel ABI and are shared with the
// WGSL sources; they must change in lockstep.
type ActivationKind int32

// Fusable activation kinds.
const (
	ActivationNone ActivationKind = 0
	ActivationReLU ActivationKind = 1
	ActivationClip ActivationKind = 5
)

// FusedActivation is the parsed fused-activation descriptor embedded by
// value into a conv kernel. Params are NaN when the kind does not use them.
type FusedActivation struct {
	Kind   ActivationKind
	Param0 float32
	Param1 float32
}

// LoadFusedActivation parses the "activation" and "activation_params"
// attributes. Unknown activation names and missing parameters are
// configuration errors surfaced at construction, not at call time.
func LoadFusedActivation(attrs ops.Attributes) (FusedActivation, error) {
	act := FusedActivation{
		Kind:   ActivationNone,
		Param0: float32(math.NaN()),
		Param1: float32(math.NaN()),
	}

	name := attrs.String("activation", "None")
	paramsRequired := 0
	switch name {
	case "None":
		act.Kind = ActivationNone
	case "Relu":
		act.Kind = ActivationReLU
	case "Clip":
		act.Kind = ActivationClip
		paramsRequired = 2
	default:
		return act, fmt.Errorf("%w: %s", ErrUnimplementedActivation, name)
	}

	params := attrs.Floats("activation_params")
	if len(params) < paramsRequired {
		return act, fmt.Errorf("%w: %s requires %d, got %d",
			ErrInsufficientActivationParams, name, paramsRequired, len(params))
	}
	if paramsRequired >= 1 {
		act.Param0 = params[0]
	}
	if paramsRequired >= 2 {
		act.Param1 = params[1]
	}

	return act, nil
}
