// file: internals/features/finance/transactions/dto/transaction_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolfee_backend/internals/features/finance/transactions/model"
)

// ListTransactionQuery: semua filter opsional.
type ListTransactionQuery struct {
	StudentID     *uuid.UUID
	PaymentItemID *uuid.UUID
	Method        string
	Type          string
	From          *time.Time
	To            *time.Time
}

type TransactionResponse struct {
	model.TransactionModel
	ItemCount int `json:"item_count"`
}

func ToTransactionResponse(m model.TransactionModel) TransactionResponse {
	return TransactionResponse{TransactionModel: m, ItemCount: len(m.TransactionPaymentItemIDs)}
}

func ToTransactionResponses(rows []model.TransactionModel) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToTransactionResponse(r))
	}
	return out
}
