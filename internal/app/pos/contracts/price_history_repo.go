package contracts

import (
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// PriceHistoryRecord represents a price change record.
type PriceHistoryRecord struct {
	HistoryID     string
	ProductID     string
	OldPrice      *domain.Money
	NewPrice      *domain.Money
	ChangedBy     string
	ChangedReason string
	ChangedAt     time.Time
}

// PriceHistoryRepository defines the interface for price history persistence.
type PriceHistoryRepository interface {
	InsertMut(record *PriceHistoryRecord) *spanner.Mutation
}
