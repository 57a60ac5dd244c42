package storage

import "liquidityDesk/internal/model"

// Storage defines a sink for transaction records.
type Storage interface {
	PutTransactionBatch(records []model.TransactionRecord) error
}
