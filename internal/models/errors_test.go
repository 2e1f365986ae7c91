package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{NewValidationError("x"), CodeValidation},
		{NewNotFoundError("x"), CodeNotFound},
		{NewCollisionError("x"), CodeCollision},
		{NewUpstreamError("x"), CodeUpstream},
		{NewTimeoutError("x"), CodeTimeout},
	}
	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.code {
			t.Errorf("CodeOf(%v) = %q, want %q", tt.err, got, tt.code)
		}
	}
}

func TestErrorSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("ingest failed: %w", NewNotFoundError("job missing"))
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound lost through wrapping")
	}
	var apiErr *Error
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As failed on wrapped error")
	}
	if apiErr.Message != "job missing" {
		t.Errorf("message = %q, want original preserved", apiErr.Message)
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain error) = %q, want empty", got)
	}
	if IsValidation(nil) {
		t.Error("IsValidation(nil) = true")
	}
}
