package importcfg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberAt(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    float64
		wantErr bool
	}{
		{name: "float64", value: 2.5, want: 2.5},
		{name: "int", value: 3, want: 3},
		{name: "int64", value: int64(4), want: 4},
		{name: "uint", value: uint(5), want: 5},
		{name: "json number", value: json.Number("1.25"), want: 1.25},
		{name: "bad json number", value: json.Number("x"), wantErr: true},
		{name: "string", value: "2", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := numberAt(map[string]any{"n": tt.value}, "n")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchema)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberAt_MissingKey(t *testing.T) {
	_, err := numberAt(map[string]any{}, "n")
	assert.ErrorIs(t, err, ErrSchema)
}
