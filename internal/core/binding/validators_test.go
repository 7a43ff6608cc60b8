package binding

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Status   string `validate:"omitempty,asset_status"`
	PONumber string `validate:"omitempty,po_number"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{name: "empty", input: sample{}, valid: true},
		{name: "status upper", input: sample{Status: "ACTIVE"}, valid: true},
		{name: "status lower", input: sample{Status: "in_repair"}, valid: true},
		{name: "unknown status", input: sample{Status: "LOST"}, valid: false},
		{name: "po number", input: sample{PONumber: "PO-2024/001"}, valid: true},
		{name: "po number with spaces", input: sample{PONumber: "PO 1"}, valid: false},
		{name: "po number leading dash", input: sample{PONumber: "-PO1"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterValidatorsOnGinEngine(t *testing.T) {
	assert.NoError(t, RegisterValidators())
}
