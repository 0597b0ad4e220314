package ops

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/tensor"
)

// Operator is the uniform lifecycle every registered kernel exposes:
// one-time weight prepacking at model load, one Compute per inference
// call, and deterministic release with the owning instance.
type Operator interface {
	// PrePack offers an input tensor for one-time packing. inputIndex is
	// the operator input slot the tensor feeds. Returns whether the
	// operator took ownership of the data in packed form.
	PrePack(src *tensor.RawTensor, inputIndex int) (packed bool, err error)

	// Compute runs one inference step. bias may be nil.
	Compute(x *gpu.Tensor, bias *gpu.Tensor) (*gpu.Tensor, error)

	// Release frees device resources owned by the operator.
	Release()
}

// NodeInfo is the graph-time information a factory builds an operator from.
type NodeInfo struct {
	// OpType is the registered operator name ("Conv", "FusedConv", ...).
	OpType string
	// Attrs is the node's attribute set.
	Attrs Attributes
	// InputShapes are the declared shapes of the node inputs, indexed by
	// input slot. Entries may be nil or contain DimUnknown dimensions.
	InputShapes []DeclaredShape
}

// Factory builds an operator instance bound to an engine.
type Factory func(e *gpu.Engine, log *zap.Logger, node NodeInfo) (Operator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register installs a factory under an operator name. Later registrations
// of the same name replace earlier ones; packages register in init.
func Register(opType string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[opType] = f
}

// NewOperator instantiates the operator registered under node.OpType.
func NewOperator(e *gpu.Engine, log *zap.Logger, node NodeInfo) (Operator, error) {
	registryMu.RLock()
	f, ok := registry[node.OpType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ops: no kernel registered for %q", node.OpType)
	}
	return f(e, log, node)
}

// Registered returns the sorted names of all registered operators.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
