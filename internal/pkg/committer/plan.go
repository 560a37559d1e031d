// Package committer implements the commit-plan pattern for Spanner transactions.
//
// Repositories never write. They translate aggregates into Spanner mutations,
// use cases collect those mutations into a CommitPlan, and the plan is applied
// in one atomic step:
//
//	plan := committer.NewPlan()
//	plan.Add(saleMut)
//	plan.AddMultiple(itemMuts)
//	for _, event := range sale.DomainEvents() {
//	    plan.Add(outboxRepo.InsertMut(outboxRepo.EnrichEvent(event, payload)))
//	}
//	return committer.Apply(ctx, plan)
//
// When writes depend on reads (stock checks, the payment status gate, sale
// number reservation) the use case runs inside ReadWrite and buffers the plan
// on the transaction it was handed. Spanner may run the function more than
// once when the transaction aborts, so everything derived from reads must be
// rebuilt inside the function.
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
)

// ErrForeignTxn is returned when a Spanner repository is handed a transaction
// that was not opened by the Spanner committer.
var ErrForeignTxn = errors.New("transaction was not opened by the spanner committer")

// Txn is a read-write unit of work. Buffered mutations become visible only
// when the surrounding transaction commits.
type Txn interface {
	BufferWrite(ms []*spanner.Mutation) error
}

// CommitPlan collects mutations from multiple sources and applies them atomically.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// BufferOn stages the plan on a read-write transaction.
func (cp *CommitPlan) BufferOn(tx Txn) error {
	if cp.IsEmpty() {
		return nil
	}
	if err := tx.BufferWrite(cp.mutations); err != nil {
		return fmt.Errorf("failed to buffer commit plan: %w", err)
	}
	return nil
}

// Committer provides transaction execution for CommitPlans.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply executes the CommitPlan atomically within a Spanner transaction.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}

	return nil
}

// ReadWrite runs fn inside a Spanner read-write transaction. Returning an
// error from fn rolls the transaction back; the error is returned unchanged
// so callers can match domain errors with errors.Is.
func (c *Committer) ReadWrite(ctx context.Context, fn func(ctx context.Context, tx Txn) error) error {
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, rw *spanner.ReadWriteTransaction) error {
		return fn(ctx, rw)
	})
	return err
}

// ReadWriteTxn unwraps a Txn handed out by Committer.ReadWrite.
func ReadWriteTxn(tx Txn) (*spanner.ReadWriteTransaction, error) {
	rw, ok := tx.(*spanner.ReadWriteTransaction)
	if !ok {
		return nil, ErrForeignTxn
	}
	return rw, nil
}
