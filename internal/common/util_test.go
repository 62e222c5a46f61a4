package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("secret123")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrNotFound, true},
		{ErrBadCredentials, true},
		{ErrTokenMalformed, true},
		{ErrTokenSignatureInvalid, true},
		{ErrTokenExpired, true},
		{ErrSubjectMismatch, true},
		{fmt.Errorf("login: %w", ErrBadCredentials), true},
		{ErrAlreadyExists, false},
		{ErrValidation, false},
		{errors.New("db down"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsAuthError(tt.err); got != tt.want {
			t.Fatalf("IsAuthError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
