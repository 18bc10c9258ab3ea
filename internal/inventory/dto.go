package inventory

import (
	"time"

	"chaintrack/internal/domain"
)

type CreateRecordRequest struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BatchID     string  `json:"batchId"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type EditRecordRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	BatchID     *string  `json:"batchId"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

type AllocateRequest struct {
	Quantity      int    `json:"quantity"`
	Seller        string `json:"seller"`
	TxRef         string `json:"txRef"`
	CorrelationID string `json:"correlationId"`
}

type ReconcileRequest struct {
	TxRef         string `json:"txRef"`
	CorrelationID string `json:"correlationId"`
}

type RecordDTO struct {
	RecordID      string  `json:"recordId"`
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	BatchID       string  `json:"batchId"`
	Creator       string  `json:"creator"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Status        string  `json:"status"`
	Owner         string  `json:"owner,omitempty"`
	TxRef         string  `json:"txRef,omitempty"`
	CorrelationID string  `json:"correlationId,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type RecordListResponse struct {
	Records []RecordDTO `json:"records"`
}

type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func toRecordDTO(r domain.ProductRecord) RecordDTO {
	return RecordDTO{
		RecordID:      r.RecordID,
		ProductID:     r.ProductID,
		Name:          r.Name,
		Description:   r.Description,
		BatchID:       r.BatchID,
		Creator:       r.Creator,
		Price:         r.Price,
		Quantity:      r.Quantity,
		Status:        string(r.Status),
		Owner:         r.Owner,
		TxRef:         r.TxRef,
		CorrelationID: r.CorrelationID,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRecordList(records []domain.ProductRecord) RecordListResponse {
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r))
	}
	return RecordListResponse{Records: out}
}
