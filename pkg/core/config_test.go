package core_test

import (
	"math"
	"testing"

	"github.com/leapstack-labs/karmatoken/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestTaxRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    core.TaxRate
		total   uint64
		wantErr bool
	}{
		{name: "zero", rate: core.TaxRate{}, total: 0},
		{name: "split", rate: core.TaxRate{Marketing: 100, Reflection: 50}, total: 150},
		{name: "whole amount", rate: core.TaxRate{Marketing: 600, Reflection: 400}, total: 1000},
		{name: "above denominator", rate: core.TaxRate{Marketing: 600, Reflection: 401}, total: 1001, wantErr: true},
		{name: "wraps around", rate: core.TaxRate{Marketing: math.MaxUint64, Reflection: 2}, total: math.MaxUint64, wantErr: true},
		{name: "wraps to zero", rate: core.TaxRate{Marketing: math.MaxUint64, Reflection: 1}, total: math.MaxUint64, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.total, tt.rate.Total())
			assert.Equal(t, tt.total == 0, tt.rate.IsZero())

			err := core.TaxRates{Sell: tt.rate}.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrTaxTooHigh)
				return
			}
			assert.NoError(t, err)
		})
	}
}
