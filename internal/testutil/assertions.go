package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "hearth/internal/errors"
)

// AssertAppError checks that err unwraps to an *AppError carrying the
// expected error code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("want AppError %q, got nil", code)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("want *AppError, got %T: %v", err, err)
	}

	if appErr.Code != code {
		t.Errorf("want error code %q, got %q (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimalEqual compares two decimals by value, not representation.
func AssertDecimalEqual(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()

	if !expected.Equal(actual) {
		t.Errorf("want %s, got %s", expected.String(), actual.String())
	}
}
