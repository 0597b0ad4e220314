// Copyright 2026 Texel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the host-side tensor types of the texel engine.
//
// A RawTensor is plain host memory plus a shape and a data type; the gpu
// and conv packages consume it when uploading data or packing weights.
package tensor

import (
	"github.com/texel-ml/texel/internal/tensor"
)

// Shape describes tensor dimensions in NCHW order for activations and
// OIHW order for convolution filters.
type Shape = tensor.Shape

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// RawTensor is an untyped host tensor: a byte buffer with a shape and a
// data type.
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled raw tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat32 creates a float32 raw tensor from a host slice.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}
