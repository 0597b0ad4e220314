// Copyright 2026 Texel Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gpu provides the public API of the texel dispatch engine.
//
// An Engine owns one WebGPU device and its shader, pipeline and scratch
// caches. Tensors live on the device as 2-D images of RGBA float32
// texels; uploads and downloads translate between NCHW host layout and
// the channel-packed image layout.
package gpu

import (
	"github.com/texel-ml/texel/internal/gpu"
)

// Engine owns the device, the queue and all cached GPU state.
type Engine = gpu.Engine

// Options configures engine creation.
type Options = gpu.Options

// PowerPreference selects the adapter class: "", "high-performance" or
// "low-power".
type PowerPreference = gpu.PowerPreference

// Tensor is a device tensor: a 2-D image plus its logical NCHW shape.
type Tensor = gpu.Tensor

// Image2D is a device image of RGBA float32 texels.
type Image2D = gpu.Image2D

// ImageDesc is the logical extent of an Image2D, in texels.
type ImageDesc = gpu.ImageDesc

// New creates an engine on the preferred adapter.
func New(opts Options) (*Engine, error) {
	return gpu.New(opts)
}

// IsAvailable reports whether a usable adapter can be acquired. Tests
// use it to skip GPU-dependent cases on hosts without a device.
func IsAvailable() bool {
	return gpu.IsAvailable()
}
