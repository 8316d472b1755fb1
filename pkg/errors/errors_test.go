package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"without cause",
			New(ErrCodeInvalidFormat, "unsupported format: %s", "gif"),
			"INVALID_FORMAT: unsupported format: gif",
		},
		{
			"with cause",
			Wrap(ErrCodeFileNotFound, fs.ErrNotExist, "image %s not found", "bg.jpg"),
			"FILE_NOT_FOUND: image bg.jpg not found: file does not exist",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(ErrCodeInvalidConfig, fs.ErrPermission, "read config")
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is(err, fs.ErrPermission) = false through Wrap")
	}
	if errors.Unwrap(err) != fs.ErrPermission {
		t.Error("Unwrap did not return the cause")
	}
}

func TestIs(t *testing.T) {
	deckErr := Wrap(ErrCodeFileNotFound, fs.ErrNotExist, "deck talk.json not found")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct match", New(ErrCodeInvalidInput, "no slides"), ErrCodeInvalidInput, true},
		{"other code", New(ErrCodeInvalidInput, "no slides"), ErrCodeInvalidFormat, false},
		{"behind fmt wrap", fmt.Errorf("load deck: %w", deckErr), ErrCodeFileNotFound, true},
		{"outer code wins", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidFormat, "gif"), "output.formats"), ErrCodeInvalidConfig, true},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeUnsupported, "webp"), ErrCodeUnsupported},
		{"wrapped by fmt", fmt.Errorf("slide[2]: %w", New(ErrCodeInternal, "x")), ErrCodeInternal},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidInput, "deck has no slides array"), "deck has no slides array"},
		{"wrapped keeps inner message", fmt.Errorf("build: %w", New(ErrCodeInvalidPath, "bad path")), "bad path"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeRecoverable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeMalformedUnit, true},
		{ErrCodeUnsupportedColor, true},
		{ErrCodeUnresolvedPercentage, true},
		{ErrCodeEffectSourceUnavailable, true},
		{ErrCodeInvalidTreeShape, true},
		{ErrCodeUnknownProperty, true},
		{ErrCodeDeprecatedProperty, true},
		{ErrCodeUnknownValue, true},
		{ErrCodeInvalidInput, false},
		{ErrCodeInvalidFormat, false},
		{ErrCodeInvalidConfig, false},
		{ErrCodeFileNotFound, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		if got := tt.code.Recoverable(); got != tt.want {
			t.Errorf("%s.Recoverable() = %v, want %v", tt.code, got, tt.want)
		}
	}
}
