package registry

import (
	"reflect"
	"sync"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/encoder"
)

var once sync.Once

//nolint:gochecknoinits
func init() {
	once.Do(func() {
		types := []reflect.Type{
			reflect.TypeOf(core.DeclareV0{}),
			reflect.TypeOf(core.DeclareV1{}),
			reflect.TypeOf(core.DeclareV2{}),
			reflect.TypeOf(core.DeclareV3{}),
			reflect.TypeOf(core.Deploy{}),
			reflect.TypeOf(core.DeployAccountV1{}),
			reflect.TypeOf(core.DeployAccountV3{}),
			reflect.TypeOf(core.InvokeV0{}),
			reflect.TypeOf(core.InvokeV1{}),
			reflect.TypeOf(core.InvokeV3{}),
			reflect.TypeOf(core.L1Handler{}),
		}

		for _, t := range types {
			err := encoder.RegisterType(t)
			if err != nil {
				panic(err)
			}
		}
	})
}
