package app

import (
	"strings"
	"testing"
)

func TestValidateSecurityConfigDisabled(t *testing.T) {
	if err := ValidateSecurityConfig(Config{RequireCodeHMAC: false}); err != nil {
		t.Fatalf("policy disabled should pass: %v", err)
	}
}

func TestValidateSecurityConfigMissingKey(t *testing.T) {
	t.Setenv("SHOPGATE_CODE_HMAC_KEY", "")
	err := ValidateSecurityConfig(Config{RequireCodeHMAC: true})
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("err = %v, want missing-key message", err)
	}
}

func TestValidateSecurityConfigShortKey(t *testing.T) {
	t.Setenv("SHOPGATE_CODE_HMAC_KEY", "too-short")
	err := ValidateSecurityConfig(Config{RequireCodeHMAC: true})
	if err == nil {
		t.Fatal("expected error for short key")
	}
	if !strings.Contains(err.Error(), "too short") {
		t.Errorf("err = %v, want too-short message", err)
	}
}

func TestValidateSecurityConfigOK(t *testing.T) {
	t.Setenv("SHOPGATE_CODE_HMAC_KEY", strings.Repeat("k", 32))
	if err := ValidateSecurityConfig(Config{RequireCodeHMAC: true}); err != nil {
		t.Fatalf("valid key should pass: %v", err)
	}
}
