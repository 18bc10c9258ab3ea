package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestInsufficientQuantityErrorContext(t *testing.T) {
	err := NewInsufficientQuantityError("widget-1", 7, 6)

	ie, ok := IsInsufficientQuantityError(err)
	if !ok {
		t.Fatal("expected IsInsufficientQuantityError to match")
	}
	if ie.Requested != 7 || ie.Available != 6 {
		t.Errorf("expected requested/available 7/6, got %d/%d", ie.Requested, ie.Available)
	}
	if !strings.Contains(err.Error(), "widget-1") {
		t.Errorf("expected message to carry the product id, got %q", err.Error())
	}
}

func TestInvalidTransitionErrorContext(t *testing.T) {
	err := NewInvalidTransitionError("widget-1", "producer1", "shipped", "delete")

	te, ok := IsInvalidTransitionError(err)
	if !ok {
		t.Fatal("expected IsInvalidTransitionError to match")
	}
	if te.From != "shipped" || te.Attempted != "delete" {
		t.Errorf("unexpected transition context: %+v", te)
	}
}

func TestIsHelpersMatchWrappedErrors(t *testing.T) {
	base := NewRecordNotFoundError("widget-1", "producer1")
	wrapped := fmt.Errorf("handling request: %w", base)

	if _, ok := IsRecordNotFoundError(wrapped); !ok {
		t.Error("expected IsRecordNotFoundError to match through wrapping")
	}
	if _, ok := IsDuplicateRecordError(wrapped); ok {
		t.Error("did not expect IsDuplicateRecordError to match")
	}
}

func TestReconciliationFailedErrorUnwraps(t *testing.T) {
	cause := NewRecordNotFoundError("widget-1", "producer1")
	err := NewReconciliationFailedError("widget-1", "producer1", "0xabc", cause)

	if !stderrors.Is(err, err) {
		t.Error("expected error identity")
	}
	if _, ok := IsRecordNotFoundError(err); !ok {
		t.Error("expected the cause to remain reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "0xabc") {
		t.Errorf("expected message to carry the tx reference, got %q", err.Error())
	}
}

func TestStorageBusyErrorMessage(t *testing.T) {
	err := NewStorageBusyError(2 * time.Second)
	if !strings.Contains(err.Error(), "2s") {
		t.Errorf("expected message to carry the timeout, got %q", err.Error())
	}
}

func TestStorageErrorsUnwrap(t *testing.T) {
	cause := stderrors.New("disk gone")

	if !stderrors.Is(NewStorageUnavailableError(cause), cause) {
		t.Error("expected StorageUnavailableError to unwrap to cause")
	}
	if !stderrors.Is(NewStorageWriteFailedError(cause), cause) {
		t.Error("expected StorageWriteFailedError to unwrap to cause")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("validation failed", ValidationDetail{Field: "quantity", Message: "must be non-negative"})

	ve, ok := IsValidationError(err)
	if !ok {
		t.Fatal("expected IsValidationError to match")
	}
	if len(ve.Details) != 1 || ve.Details[0].Field != "quantity" {
		t.Errorf("unexpected details: %+v", ve.Details)
	}
}
