package service

import (
	"errors"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rsecret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "Sup3rsecret" {
		t.Fatalf("expected hash, got plaintext")
	}
	if !CheckPassword("Sup3rsecret", hash) {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword("wrongpass", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPassword_DistinctDigests(t *testing.T) {
	first, err := HashPassword("Sup3rsecret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("Sup3rsecret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatalf("expected salted digests to differ")
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Sup3rsecret", false},
		{"too short", "Ab1", true},
		{"no uppercase", "alllower1", true},
		{"no lowercase", "ALLUPPER1", true},
		{"no digit", "NoDigitsHere", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tc.password)
			if tc.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if vErr.Field != "password" {
					t.Fatalf("expected password field, got %q", vErr.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid password, got %v", err)
			}
		})
	}
}
