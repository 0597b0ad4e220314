// Copyright 2026 Texel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package conv provides the public API for 2-D convolution on the texel
// engine: kind classification, weight prepacking and fused-activation
// dispatch across the specialized kernel variants.
package conv

import (
	"go.uber.org/zap"

	internalconv "github.com/texel-ml/texel/internal/conv"
	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/ops"
	"github.com/texel-ml/texel/internal/tensor"
)

// ConvKind is the execution strategy chosen for a filter shape.
type ConvKind = internalconv.ConvKind

// Execution strategies.
const (
	Generic   ConvKind = internalconv.Generic
	Depthwise ConvKind = internalconv.Depthwise
)

// FusedActivation describes the activation applied inside the conv
// kernel.
type FusedActivation = internalconv.FusedActivation

// Activation kinds shared with the kernels.
const (
	ActivationNone = internalconv.ActivationNone
	ActivationReLU = internalconv.ActivationReLU
	ActivationClip = internalconv.ActivationClip
)

// Attributes is the untyped attribute bag of an operator node.
type Attributes = ops.Attributes

// DeclaredShape is a graph-declared shape; unknown dimensions are
// DimUnknown.
type DeclaredShape = ops.DeclaredShape

// DimUnknown marks a dynamic dimension in a DeclaredShape.
const DimUnknown = ops.DimUnknown

// ConvAttributes holds the convolution attributes of a node.
type ConvAttributes = internalconv.ConvAttributes

// Kernel is a convolution operator instance: classify once, prepack
// once, then Compute per inference step.
type Kernel = internalconv.Kernel

// NewKernel builds a conv kernel from node attributes and the filter's
// declared shape.
func NewKernel(e *gpu.Engine, log *zap.Logger, attrs Attributes, weightDecl DeclaredShape) (*Kernel, error) {
	return internalconv.NewKernel(e, log, attrs, weightDecl)
}

// Classify picks the execution strategy for a declared filter shape.
func Classify(weight DeclaredShape, group int64) (ConvKind, error) {
	return internalconv.Classify(weight, group)
}

// ReferenceConv2D is the CPU correctness oracle for the device kernels.
func ReferenceConv2D(x, w *tensor.RawTensor, bias []float32, strides, pads, dilations []int64, group int64, act FusedActivation) (*tensor.RawTensor, error) {
	return internalconv.ReferenceConv2D(x, w, bias, strides, pads, dilations, group, act)
}
