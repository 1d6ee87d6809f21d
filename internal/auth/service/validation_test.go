package service

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCredentials(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice", "password123", nil},
		{"valid with separators", "a_b-c1", "password123", nil},
		{"username too short", "ab", "password123", ErrValidationUsername},
		{"username too long", strings.Repeat("a", 33), "password123", ErrValidationUsername},
		{"username starts with underscore", "_alice", "password123", ErrValidationUsername},
		{"username ends with dash", "alice-", "password123", ErrValidationUsername},
		{"username with space", "al ice", "password123", ErrValidationUsername},
		{"password too short", "alice", "pw1", ErrValidationPassword},
		{"password too long", "alice", strings.Repeat("a1", 40), ErrValidationPassword},
		{"password letters only", "alice", "passwordonly", ErrValidationPassword},
		{"password digits only", "alice", "12345678", ErrValidationPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCredentials(tc.username, tc.password)

			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if _, ok := AsValidationError(err); !ok {
				t.Error("expected a ValidationError wrapper")
			}
		})
	}
}
