package ddbmap

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		err := &ValidationError{Path: "details.tags[2]", Reason: "unsupported value type chan int"}
		if !strings.Contains(err.Error(), "details.tags[2]") {
			t.Errorf("expected path in message, got %q", err.Error())
		}
	})

	t.Run("without path", func(t *testing.T) {
		err := &ValidationError{Reason: "unsupported value type chan int"}
		if strings.Contains(err.Error(), " at ") {
			t.Errorf("expected no path segment in message, got %q", err.Error())
		}
	})
}

func TestServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("throttled")
	err := serviceError("Scan", "products", cause)

	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if serr.Op != "Scan" || serr.Table != "products" {
		t.Errorf("unexpected fields: %+v", serr)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the wrapped cause to be reachable via errors.Is")
	}
	for _, part := range []string{"Scan", "products", "throttled"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("expected %q in message, got %q", part, err.Error())
		}
	}
}
