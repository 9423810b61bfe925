package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain string", `"ADMIN"`, "ADMIN", false},
		{"lowercase string", `"admin"`, "ADMIN", false},
		{"spaced string", `"sales rep"`, "SALES_REP", false},
		{"padded string", `"  manager  "`, "MANAGER", false},
		{"object with name", `{"name": "Cashier"}`, "CASHIER", false},
		{"object with role", `{"role": "sales rep"}`, "SALES_REP", false},
		{"object name wins over role", `{"name": "ADMIN", "role": "CASHIER"}`, "ADMIN", false},
		{"empty payload", ``, "", true},
		{"null payload", `null`, "", true},
		{"empty string", `""`, "", true},
		{"empty object", `{}`, "", true},
		{"undecodable payload", `[1,2]`, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeRole(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
