package accounting

import (
	"context"
)

// PostingRepository defines the interface for posting persistence.
// The posting log is append-only: there is deliberately no update or delete.
type PostingRepository interface {
	// Create appends a posting to the durable log
	Create(ctx context.Context, posting *Posting) error

	// CreateBatch appends multiple postings in order
	CreateBatch(ctx context.Context, postings []Posting) error

	// FindAll returns all postings ordered by date, then insertion order
	FindAll(ctx context.Context) ([]Posting, error)

	// FindByDocument returns postings for a source document number
	FindByDocument(ctx context.Context, documentNumber string) ([]Posting, error)

	// FindByProduct returns postings that reference a product code
	FindByProduct(ctx context.Context, productCode string) ([]Posting, error)

	// Count returns the number of postings in the log
	Count(ctx context.Context) (int64, error)
}
