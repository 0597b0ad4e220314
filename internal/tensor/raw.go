// Package tensor provides the host-side tensor types consumed by the
// texel GPU engine: shapes, data types, and raw row-major buffers.
package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is a host-resident tensor: a row-major byte buffer plus shape
// and type metadata. It is the input to weight packing and image uploads;
// device-resident data lives in gpu.Tensor instead.
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw creates a zero-initialized RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat32 creates a float32 RawTensor from a slice. The slice is copied.
func FromFloat32(values []float32, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(values), shape, shape.NumElements())
	}
	t, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	copy(t.Float32s(), values)
	return t, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total element count.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the size of the underlying buffer in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte buffer.
func (r *RawTensor) Data() []byte {
	return r.data
}

// Float32s returns the buffer viewed as a float32 slice.
// Panics if the tensor is not Float32.
func (r *RawTensor) Float32s() []float32 {
	if r.dtype != Float32 {
		panic("tensor: Float32s called on " + r.dtype.String() + " tensor")
	}
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // zero-copy view over the backing buffer
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), len(r.data)/4)
}
