package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Infrastructure errors.

// StorageUnavailableError means the backing medium could not be read.
// Callers must treat the ledger as unknown, never as empty.
type StorageUnavailableError struct {
	Cause error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("record store unavailable: %v", e.Cause)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Cause }

func NewStorageUnavailableError(cause error) *StorageUnavailableError {
	return &StorageUnavailableError{Cause: cause}
}

func IsStorageUnavailableError(err error) (*StorageUnavailableError, bool) {
	var se *StorageUnavailableError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// StorageWriteFailedError means the new snapshot could not be persisted.
// The in-memory mutation that produced it has been discarded.
type StorageWriteFailedError struct {
	Cause error
}

func (e *StorageWriteFailedError) Error() string {
	return fmt.Sprintf("record store write failed: %v", e.Cause)
}

func (e *StorageWriteFailedError) Unwrap() error { return e.Cause }

func NewStorageWriteFailedError(cause error) *StorageWriteFailedError {
	return &StorageWriteFailedError{Cause: cause}
}

func IsStorageWriteFailedError(err error) (*StorageWriteFailedError, bool) {
	var se *StorageWriteFailedError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// StorageBusyError means the store's exclusive lock could not be acquired
// within the bounded wait. Retryable by the caller.
type StorageBusyError struct {
	Timeout time.Duration
}

func (e *StorageBusyError) Error() string {
	return fmt.Sprintf("record store busy: lock not acquired within %s", e.Timeout)
}

func NewStorageBusyError(timeout time.Duration) *StorageBusyError {
	return &StorageBusyError{Timeout: timeout}
}

func IsStorageBusyError(err error) (*StorageBusyError, bool) {
	var se *StorageBusyError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Domain rule violations.

// DuplicateRecordError: a lot with the same (productId, creator) is still
// in flight (draft/saved/approved).
type DuplicateRecordError struct {
	ProductID string
	Creator   string
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("product %s by %s already registered and not yet allocated", e.ProductID, e.Creator)
}

func NewDuplicateRecordError(productID, creator string) *DuplicateRecordError {
	return &DuplicateRecordError{ProductID: productID, Creator: creator}
}

func IsDuplicateRecordError(err error) (*DuplicateRecordError, bool) {
	var de *DuplicateRecordError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type RecordNotFoundError struct {
	ProductID string
	Actor     string
}

func (e *RecordNotFoundError) Error() string {
	if e.Actor != "" {
		return fmt.Sprintf("no matching record for product %s and actor %s", e.ProductID, e.Actor)
	}
	return fmt.Sprintf("no matching record for product %s", e.ProductID)
}

func NewRecordNotFoundError(productID, actor string) *RecordNotFoundError {
	return &RecordNotFoundError{ProductID: productID, Actor: actor}
}

func IsRecordNotFoundError(err error) (*RecordNotFoundError, bool) {
	var ne *RecordNotFoundError
	if stderrors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// InvalidTransitionError: the record exists but its current status does
// not permit the attempted action.
type InvalidTransitionError struct {
	ProductID string
	Actor     string
	From      string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("product %s: cannot %s from status %s", e.ProductID, e.Attempted, e.From)
}

func NewInvalidTransitionError(productID, actor, from, attempted string) *InvalidTransitionError {
	return &InvalidTransitionError{ProductID: productID, Actor: actor, From: from, Attempted: attempted}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var te *InvalidTransitionError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// NoAllocatableRecordError: no record satisfied the seller filter.
type NoAllocatableRecordError struct {
	ProductID string
}

func (e *NoAllocatableRecordError) Error() string {
	return fmt.Sprintf("no allocatable record for product %s", e.ProductID)
}

func NewNoAllocatableRecordError(productID string) *NoAllocatableRecordError {
	return &NoAllocatableRecordError{ProductID: productID}
}

func IsNoAllocatableRecordError(err error) (*NoAllocatableRecordError, bool) {
	var ae *NoAllocatableRecordError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

type InsufficientQuantityError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("product %s: requested %d units, only %d available", e.ProductID, e.Requested, e.Available)
}

func NewInsufficientQuantityError(productID string, requested, available int) *InsufficientQuantityError {
	return &InsufficientQuantityError{ProductID: productID, Requested: requested, Available: available}
}

func IsInsufficientQuantityError(err error) (*InsufficientQuantityError, bool) {
	var ie *InsufficientQuantityError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// Cross-system divergence.

// ReconciliationFailedError: the external anchoring action succeeded but
// the local record could not be updated to match. The caller must warn
// the user; the bridge never retries on its own.
type ReconciliationFailedError struct {
	ProductID string
	Actor     string
	TxRef     string
	Cause     error
}

func (e *ReconciliationFailedError) Error() string {
	return fmt.Sprintf("product %s (actor %s): external action %s completed but local record not updated: %v",
		e.ProductID, e.Actor, e.TxRef, e.Cause)
}

func (e *ReconciliationFailedError) Unwrap() error { return e.Cause }

func NewReconciliationFailedError(productID, actor, txRef string, cause error) *ReconciliationFailedError {
	return &ReconciliationFailedError{ProductID: productID, Actor: actor, TxRef: txRef, Cause: cause}
}

func IsReconciliationFailedError(err error) (*ReconciliationFailedError, bool) {
	var re *ReconciliationFailedError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ValidationDetail and ValidationError carry per-field problems from
// input validation, in the controllers and at the ledger boundary.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
