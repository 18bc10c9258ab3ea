package inventory

import (
	"encoding/json"
	"net/http"

	"chaintrack/internal/domain"
	apperrors "chaintrack/internal/errors"
	"chaintrack/internal/inventory/ledger"
	"chaintrack/internal/inventory/views"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identity headers. Authentication and role checks happen upstream;
// the controller only reads the already-authenticated identity.
const (
	headerActor = "X-Actor"
	headerRole  = "X-Actor-Role"
)

type Controller struct {
	ledger     Ledger
	reconciler Reconciler
	logger     *zap.Logger
}

func NewController(ledger Ledger, reconciler Reconciler, logger *zap.Logger) *Controller {
	return &Controller{
		ledger:     ledger,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}

	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	err := c.ledger.Create(r.Context(), ledger.CreateParams{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Description: req.Description,
		BatchID:     req.BatchID,
		Creator:     actor,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]string{"productId": req.ProductID})
}

func (c *Controller) HandleEdit(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	var req EditRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Quantity != nil && *req.Quantity < 0 {
		c.writeValidationError(w, "quantity must be non-negative", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be non-negative",
		})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.writeValidationError(w, "price must be non-negative", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
		return
	}

	err := c.ledger.Edit(r.Context(), productID, actor, ledger.EditFields{
		Name:        req.Name,
		Description: req.Description,
		BatchID:     req.BatchID,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"productId": productID})
}

func (c *Controller) HandleSave(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	if err := c.ledger.Save(r.Context(), productID, actor); err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"productId": productID, "status": string(domain.StatusSaved)})
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	if err := c.ledger.Delete(r.Context(), productID, actor); err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleApprove reconciles the completed anchoring transaction supplied
// by the caller into the local record.
func (c *Controller) HandleApprove(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.TxRef == "" {
		c.writeValidationError(w, "txRef is required", apperrors.ValidationDetail{
			Field:   "txRef",
			Message: "txRef is required",
		})
		return
	}

	if err := c.reconciler.ReconcileApproval(r.Context(), productID, actor, req.TxRef, req.CorrelationID); err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"productId": productID, "status": string(domain.StatusApproved)})
}

func (c *Controller) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, role, ok := c.identity(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.Quantity < 1 {
		c.writeValidationError(w, "quantity must be at least 1", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be at least 1",
		})
		return
	}

	filter, target, ok := ledger.FilterForRole(role, req.Seller)
	if !ok {
		c.writeValidationError(w, "role cannot allocate", apperrors.ValidationDetail{
			Field:   headerRole,
			Message: "only suppliers and consumers allocate inventory",
		})
		return
	}

	err := c.ledger.Allocate(r.Context(), ledger.AllocateParams{
		ProductID:     productID,
		Buyer:         actor,
		Quantity:      req.Quantity,
		Filter:        filter,
		TargetStatus:  target,
		TxRef:         req.TxRef,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"productId": productID,
		"quantity":  req.Quantity,
		"status":    string(target),
	})
}

// HandleConfirmDelivery reconciles the external delivery confirmation of
// a purchased lot.
func (c *Controller) HandleConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if req.TxRef == "" {
		c.writeValidationError(w, "txRef is required", apperrors.ValidationDetail{
			Field:   "txRef",
			Message: "txRef is required",
		})
		return
	}

	if err := c.reconciler.ReconcileDelivery(r.Context(), productID, actor, req.TxRef); err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"productId": productID, "status": string(domain.StatusDelivered)})
}

func (c *Controller) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, role, ok := c.identity(w, r)
	if !ok {
		return
	}

	records, err := c.ledger.Snapshot(r.Context())
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toRecordList(views.AvailableForRole(records, role, actor)))
}

func (c *Controller) HandleOwned(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, _, ok := c.identity(w, r)
	if !ok {
		return
	}

	records, err := c.ledger.Snapshot(r.Context())
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toRecordList(views.OwnedBy(records, actor)))
}

func (c *Controller) HandleSearch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if _, _, ok := c.identity(w, r); !ok {
		return
	}

	records, err := c.ledger.Snapshot(r.Context())
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	out := RecordListResponse{Records: []RecordDTO{}}
	for rec := range views.Search(records, r.URL.Query().Get("q")) {
		out.Records = append(out.Records, toRecordDTO(rec))
	}
	c.writeJSON(w, http.StatusOK, out)
}

func (c *Controller) HandleHistory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if _, _, ok := c.identity(w, r); !ok {
		return
	}
	productID := chi.URLParam(r, "productId")

	records, err := c.ledger.Snapshot(r.Context())
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toRecordList(views.History(records, productID)))
}

func (c *Controller) HandleStats(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if _, _, ok := c.identity(w, r); !ok {
		return
	}

	records, err := c.ledger.Snapshot(r.Context())
	if err != nil {
		c.handleLedgerError(w, err, logger)
		return
	}

	counts := make(map[string]int)
	for status, n := range views.StatusCounts(records) {
		counts[string(status)] = n
	}
	c.writeJSON(w, http.StatusOK, StatsResponse{Total: len(records), ByStatus: counts})
}

func (c *Controller) identity(w http.ResponseWriter, r *http.Request) (actor string, role domain.Role, ok bool) {
	actor = r.Header.Get(headerActor)
	role = domain.Role(r.Header.Get(headerRole))

	var details []apperrors.ValidationDetail
	if actor == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   headerActor,
			Message: "actor identity header is required",
		})
	}
	if !role.Valid() {
		details = append(details, apperrors.ValidationDetail{
			Field:   headerRole,
			Message: "actor role header must be one of admin, producer, supplier, consumer",
		})
	}
	if len(details) > 0 {
		c.writeValidationError(w, "missing actor identity", details...)
		return "", "", false
	}
	return actor, role, true
}

func validateCreateRequest(req CreateRecordRequest) error {
	var details []apperrors.ValidationDetail

	if req.ProductID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId is required",
		})
	}
	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	if req.Quantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be non-negative",
		})
	}
	if req.Price < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *Controller) handleLedgerError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsRecordNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsNoAllocatableRecordError(err); ok {
		c.writeError(w, http.StatusNotFound, "NO_ALLOCATABLE_RECORD", err.Error())
		return
	}
	if _, ok := apperrors.IsDuplicateRecordError(err); ok {
		c.writeError(w, http.StatusConflict, "DUPLICATE_RECORD", err.Error())
		return
	}
	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		c.writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		return
	}
	if _, ok := apperrors.IsInsufficientQuantityError(err); ok {
		c.writeError(w, http.StatusConflict, "INSUFFICIENT_QUANTITY", err.Error())
		return
	}
	if _, ok := apperrors.IsReconciliationFailedError(err); ok {
		// The external action already completed; the caller must surface
		// the divergence to the user.
		c.writeError(w, http.StatusConflict, "RECONCILIATION_FAILED", err.Error())
		return
	}
	if _, ok := apperrors.IsStorageBusyError(err); ok {
		w.Header().Set("Retry-After", "1")
		c.writeError(w, http.StatusServiceUnavailable, "STORAGE_BUSY", err.Error())
		return
	}

	logger.Error("ledger operation failed", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeError(w http.ResponseWriter, status int, code, message string) {
	c.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
