package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// AccountID extracts the account identifier from the bundle's EG1 token.
// The cookie value has the form "<prefix>~<jwt>"; the account ID is the
// "sub" claim of the JWT payload. The token signature is not verified --
// the value only routes the entitlement query, the storefront still
// authenticates the request itself.
func (b *CredentialBundle) AccountID() (string, error) {
	c, ok := b.Get("EPIC_EG1")
	if !ok {
		return "", fmt.Errorf("no EPIC_EG1 cookie in bundle")
	}

	parts := strings.Split(c.Value, "~")
	if len(parts) < 2 {
		return "", fmt.Errorf("EPIC_EG1 value has no token segment")
	}

	jwtParts := strings.Split(parts[1], ".")
	if len(jwtParts) < 2 {
		return "", fmt.Errorf("EPIC_EG1 token is not a JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(jwtParts[1], "="))
	if err != nil {
		return "", fmt.Errorf("decode EG1 token payload: %w", err)
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", fmt.Errorf("parse EG1 token claims: %w", err)
	}
	if claims.Sub == "" {
		return "", fmt.Errorf("EG1 token carries no account ID")
	}

	return claims.Sub, nil
}
