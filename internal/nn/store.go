package nn

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/born-ml/fcnet/internal/tensor"
)

// Snapshot is the full set of learned tensors of a model at a point in time,
// keyed by qualified parameter name in insertion (forward-pass) order.
type Snapshot = orderedmap.OrderedMap[string, *tensor.RawTensor]

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return orderedmap.New[string, *tensor.RawTensor]()
}

// ParameterStore is the read/write bridge into a live model's parameters.
type ParameterStore interface {
	// NamedParameters returns a deep copy of every parameter. Reading never
	// mutates the model and does not depend on the forward Mode.
	NamedParameters() *Snapshot

	// ParameterShapes returns the name and shape of every parameter.
	ParameterShapes() *ShapeLayout

	// SetNamedParameter copies t into the parameter called name.
	SetNamedParameter(name string, t *tensor.RawTensor) error
}

var _ ParameterStore = (*Network)(nil)

// NamedParameters returns a deep copy of every parameter in layer order.
func (n *Network) NamedParameters() *Snapshot {
	snapshot := NewSnapshot()
	for _, p := range n.Parameters() {
		snapshot.Set(p.Name(), p.Tensor().Clone())
	}
	return snapshot
}

// ParameterShapes returns the name and shape of every parameter in layer order.
func (n *Network) ParameterShapes() *ShapeLayout {
	layout := orderedmap.New[string, tensor.Shape]()
	for _, p := range n.Parameters() {
		layout.Set(p.Name(), p.Tensor().Shape().Clone())
	}
	return layout
}

// SetNamedParameter copies the values of t into the parameter called name.
//
// The parameter keeps its own storage; t is not retained.
func (n *Network) SetNamedParameter(name string, t *tensor.RawTensor) error {
	for _, p := range n.Parameters() {
		if p.Name() != name {
			continue
		}
		if err := p.Tensor().CopyFrom(t); err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("unknown parameter %q", name)
}
