package blockifier

import (
	"maps"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
)

// ExecutionResources are the VM resources a call consumed
type ExecutionResources struct {
	Steps       uint64
	MemoryHoles uint64
	// builtin name -> instances used
	Builtins map[string]uint64
}

func (r *ExecutionResources) Add(other ExecutionResources) {
	r.Steps += other.Steps
	r.MemoryHoles += other.MemoryHoles
	if len(other.Builtins) == 0 {
		return
	}
	if r.Builtins == nil {
		r.Builtins = make(map[string]uint64, len(other.Builtins))
	}
	for name, count := range other.Builtins {
		r.Builtins[name] += count
	}
}

func (r ExecutionResources) Clone() ExecutionResources {
	r.Builtins = maps.Clone(r.Builtins)
	return r
}

// ActualCost is what a validation or execution call consumed and was charged.
type ActualCost struct {
	Fee       *felt.Felt
	FeeType   core.FeeType
	Gas       GasVector
	Resources ExecutionResources
}

// ResourceUsage accumulates the cost of every call made through an executor.
type ResourceUsage struct {
	Gas       GasVector
	Resources ExecutionResources
	Calls     uint64
}

func (u *ResourceUsage) Add(cost *ActualCost) error {
	if cost == nil {
		return nil
	}
	gas, err := u.Gas.CheckedAdd(cost.Gas)
	if err != nil {
		return err
	}
	u.Gas = gas
	u.Resources.Add(cost.Resources)
	u.Calls++
	return nil
}
