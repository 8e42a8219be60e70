package config

import (
	"fmt"
	"reflect"

	"github.com/holiman/uint256"
	"github.com/leapstack-labs/karmatoken/pkg/core"
)

var (
	addressType = reflect.TypeOf(core.Address{})
	amountType  = reflect.TypeOf(uint256.Int{})
)

// addressHook decodes 0x-prefixed hex strings into addresses.
func addressHook(from, to reflect.Type, data any) (any, error) {
	if to != addressType || from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return core.ZeroAddress, nil
	}
	return core.ParseAddress(s)
}

// amountHook decodes decimal or 0x-hex strings and YAML integers into
// base-unit amounts. Pointer fields reach the hook with their element type.
func amountHook(from, to reflect.Type, data any) (any, error) {
	if to != amountType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		v, err := core.ParseAmount(data.(string))
		if err != nil {
			return nil, err
		}
		return *v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := reflect.ValueOf(data).Int()
		if n < 0 {
			return nil, fmt.Errorf("amount %d is negative", n)
		}
		return *uint256.NewInt(uint64(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return *uint256.NewInt(reflect.ValueOf(data).Uint()), nil
	case reflect.Float32, reflect.Float64:
		return nil, fmt.Errorf("amount %v is not an integer; quote large amounts", data)
	}
	return data, nil
}
