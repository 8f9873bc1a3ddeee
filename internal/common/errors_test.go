package common

import (
	"errors"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		dev      bool
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "unsupported image",
			err:      NewAppError("UNSUPPORTED_IMAGE", "heic", ErrUnsupportedImage),
			wantCode: codes.InvalidArgument,
			wantMsg:  "unsupported_image_type",
		},
		{
			name:     "request timeout",
			err:      NewAppError("TIMEOUT", "budget", ErrRequestTimeout),
			wantCode: codes.DeadlineExceeded,
			wantMsg:  "recognition timed out",
		},
		{
			name:     "internal redacted in production",
			err:      WrapError(ErrEngine, "tessdata missing"),
			wantCode: codes.Internal,
			wantMsg:  "recognition failed",
		},
		{
			name:     "internal raw in dev mode",
			err:      WrapError(ErrEngine, "tessdata missing"),
			dev:      true,
			wantCode: codes.Internal,
			wantMsg:  "tessdata missing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(StatusFromError(tt.err, tt.dev))
			if !ok {
				t.Fatal("want a grpc status")
			}
			if st.Code() != tt.wantCode {
				t.Errorf("code = %v, want %v", st.Code(), tt.wantCode)
			}
			if !strings.Contains(st.Message(), tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", st.Message(), tt.wantMsg)
			}
		})
	}

	if StatusFromError(nil, false) != nil {
		t.Error("nil error must map to nil")
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("ENGINE_INIT", "acquire failed", WrapError(ErrEngine, "no binary"))
	if !errors.Is(err, ErrEngine) {
		t.Error("sentinel lost through AppError")
	}
	if got := err.Error(); !strings.Contains(got, "ENGINE_INIT") || !strings.Contains(got, "no binary") {
		t.Errorf("Error() = %q", got)
	}
}
