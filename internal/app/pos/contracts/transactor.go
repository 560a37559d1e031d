package contracts

import (
	"context"

	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Transactor runs units of work against the ledger. Apply commits a plan
// blindly; ReadWrite runs fn in a serializable transaction where reads and
// the buffered plan commit together or not at all. fn may be retried.
type Transactor interface {
	Apply(ctx context.Context, plan *committer.CommitPlan) error
	ReadWrite(ctx context.Context, fn func(ctx context.Context, tx committer.Txn) error) error
}
