package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeLockedDepNotFound, "no locked version of %q", "pytest")

	if err.Code != ErrCodeLockedDepNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeLockedDepNotFound)
	}

	if err.Message != `no locked version of "pytest"` {
		t.Errorf("Message = %v, want %v", err.Message, `no locked version of "pytest"`)
	}

	expected := `NOT_FOUND_LOCKED_DEP: no locked version of "pytest"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrCodeInstallFailed, cause, "pip install failed")

	if err.Code != ErrCodeInstallFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInstallFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeVersionConflict, "test"),
			code:     ErrCodeVersionConflict,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeVersionConflict, "test"),
			code:     ErrCodeLockedDepNotFound,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "wrapped structured error",
			err:      Wrap(ErrCodeInvalidLockfile, errors.New("toml"), "parse"),
			code:     ErrCodeInvalidLockfile,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeExtraNotFound, "test")); got != ErrCodeExtraNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeExtraNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeVenvNotFound, "no virtualenv at /tmp/x")
	if got := UserMessage(err); got != "no virtualenv at /tmp/x" {
		t.Errorf("UserMessage() = %v, want %v", got, "no virtualenv at /tmp/x")
	}

	plain := errors.New("plain")
	if got := UserMessage(plain); got != "plain" {
		t.Errorf("UserMessage() = %v, want %v", got, "plain")
	}
}

func TestSkipEnvironment(t *testing.T) {
	err := Skip("skipping provisioning env %q", ".stanza")

	if !IsSkip(err) {
		t.Error("IsSkip() = false, want true")
	}

	want := `skipping provisioning env ".stanza"`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// A skip signal is not a coded failure.
	if IsSkip(New(ErrCodeInternal, "boom")) {
		t.Error("IsSkip(coded error) = true, want false")
	}
}
