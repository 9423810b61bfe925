package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Canonical role names.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleSalesRep = "SALES_REP"
	RoleCashier  = "CASHIER"
)

// roleObject is the object-shaped role payload some upstream rows carry.
type roleObject struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// NormalizeRole decodes a role field that may arrive either as a plain
// string or as an object carrying a name/role field, and returns a single
// canonical uppercase role string. The ambiguity is resolved once here and
// never carried inward.
func NormalizeRole(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", fmt.Errorf("%w: empty role", ErrValidation)
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return canonicalRole(asString)
	}

	var asObject roleObject
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return "", fmt.Errorf("%w: undecodable role payload: %v", ErrValidation, err)
	}

	if asObject.Name != "" {
		return canonicalRole(asObject.Name)
	}
	return canonicalRole(asObject.Role)
}

func canonicalRole(role string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(role))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty role", ErrValidation)
	}
	return strings.ReplaceAll(normalized, " ", "_"), nil
}
