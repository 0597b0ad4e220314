// Package ops holds the operator-facing contracts of the engine: the
// attribute set parsed from a graph node, declared (graph-time) shapes,
// and the kernel registry.
package ops

// Attributes is the attribute set of a graph node. Values are the parsed
// attribute payloads: string, []float32, []int64, or int64.
type Attributes map[string]any

// String returns the named string attribute, or def when absent.
func (a Attributes) String(name, def string) string {
	if v, ok := a[name].(string); ok {
		return v
	}
	return def
}

// Floats returns the named float list attribute, or nil when absent.
func (a Attributes) Floats(name string) []float32 {
	if v, ok := a[name].([]float32); ok {
		return v
	}
	return nil
}

// Ints returns the named integer list attribute, or nil when absent.
func (a Attributes) Ints(name string) []int64 {
	if v, ok := a[name].([]int64); ok {
		return v
	}
	return nil
}

// Int returns the named integer attribute, or def when absent.
func (a Attributes) Int(name string, def int64) int64 {
	if v, ok := a[name].(int64); ok {
		return v
	}
	return def
}

// DimUnknown marks a declared dimension whose value is not statically
// known (symbolic or absent in the graph).
const DimUnknown int64 = -1

// DeclaredShape is a graph-time tensor shape. Dimensions may be
// DimUnknown; runtime shapes never are.
type DeclaredShape []int64

// Known reports whether dimension i exists and has a static value.
func (s DeclaredShape) Known(i int) bool {
	return i < len(s) && s[i] > 0
}

// Dim returns dimension i. Callers must check Known first.
func (s DeclaredShape) Dim(i int) int64 {
	return s[i]
}
