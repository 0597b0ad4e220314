package conv

import "errors"

// Configuration and dispatch errors. Classification degradation is the
// only condition that is intentionally not an error: it downgrades to the
// generic kind with a logged warning.
var (
	// ErrUnimplementedActivation is returned for activation names the
	// fused path does not implement.
	ErrUnimplementedActivation = errors.New("conv: unimplemented activation")

	// ErrInsufficientActivationParams is returned when the attribute
	// source supplies fewer activation parameters than the kind requires.
	ErrInsufficientActivationParams = errors.New("conv: insufficient size of activation_params")

	// ErrUnsupportedGroup is returned when the generic path is asked to
	// run a grouped convolution.
	ErrUnsupportedGroup = errors.New("conv: group != 1 is not supported in Conv2D")

	// ErrNotImplemented is returned for spatial ranks other than 2.
	ErrNotImplemented = errors.New("conv: not implemented")

	// ErrDynamicDim reports a declared dimension without a static value.
	// Classification treats it as a recoverable degradation to Generic.
	ErrDynamicDim = errors.New("conv: dimension value is not available")
)
