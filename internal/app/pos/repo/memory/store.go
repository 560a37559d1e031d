// Package memory is an in-process ledger behind the same repository contracts
// as the Spanner store. It backs STORE_DRIVER=memory and the use-case tests.
//
// Repositories still return *spanner.Mutation values. Each mutation built here
// is journaled with the function that applies it; committing a plan looks the
// mutations up and applies them all under one lock, restoring a snapshot if
// any of them fails. Read-write transactions are serialized by a store-wide
// lock, which gives the same isolation as a Spanner read-write transaction at
// the cost of concurrency.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/models/m_category"
	"github.com/light-bringer/pos-service/internal/models/m_customer"
	"github.com/light-bringer/pos-service/internal/models/m_discount"
	"github.com/light-bringer/pos-service/internal/models/m_inventory_tx"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_payment"
	"github.com/light-bringer/pos-service/internal/models/m_price_history"
	"github.com/light-bringer/pos-service/internal/models/m_product"
	"github.com/light-bringer/pos-service/internal/models/m_sale"
	"github.com/light-bringer/pos-service/internal/models/m_sale_counter"
	"github.com/light-bringer/pos-service/internal/models/m_sale_item"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// ErrUnknownMutation is returned when a plan carries a mutation that was not
// built by this store's repositories.
var ErrUnknownMutation = errors.New("mutation was not built by the memory store")

// journalTTL bounds how long a built but never committed mutation is kept.
const journalTTL = 10 * time.Minute

type op func(t *tables) error

type entry struct {
	apply   op
	created time.Time
}

type tables struct {
	categories   map[string]m_category.Data
	products     map[string]m_product.Data
	skuIndex     map[string]string
	customers    map[string]m_customer.Data
	discounts    map[string]m_discount.Data
	sales        map[string]m_sale.Data
	saleNumbers  map[string]string
	saleItems    map[string][]m_sale_item.Data
	counters     map[string]m_sale_counter.Data
	payments     map[string]m_payment.Data
	checkouts    map[string]string
	inventory    []m_inventory_tx.Data
	priceHistory []m_price_history.Data
	outbox       map[string]m_outbox.Data
	outboxSeq    map[string]int64
	nextSeq      int64
}

func newTables() *tables {
	return &tables{
		categories:  make(map[string]m_category.Data),
		products:    make(map[string]m_product.Data),
		skuIndex:    make(map[string]string),
		customers:   make(map[string]m_customer.Data),
		discounts:   make(map[string]m_discount.Data),
		sales:       make(map[string]m_sale.Data),
		saleNumbers: make(map[string]string),
		saleItems:   make(map[string][]m_sale_item.Data),
		counters:    make(map[string]m_sale_counter.Data),
		payments:    make(map[string]m_payment.Data),
		checkouts:   make(map[string]string),
		outbox:      make(map[string]m_outbox.Data),
		outboxSeq:   make(map[string]int64),
	}
}

// clone copies every table. Rows are values and ops replace whole rows, so a
// shallow copy of each map is a consistent snapshot.
func (t *tables) clone() *tables {
	c := &tables{
		categories:   cloneMap(t.categories),
		products:     cloneMap(t.products),
		skuIndex:     cloneMap(t.skuIndex),
		customers:    cloneMap(t.customers),
		discounts:    cloneMap(t.discounts),
		sales:        cloneMap(t.sales),
		saleNumbers:  cloneMap(t.saleNumbers),
		saleItems:    make(map[string][]m_sale_item.Data, len(t.saleItems)),
		counters:     cloneMap(t.counters),
		payments:     cloneMap(t.payments),
		checkouts:    cloneMap(t.checkouts),
		inventory:    append([]m_inventory_tx.Data(nil), t.inventory...),
		priceHistory: append([]m_price_history.Data(nil), t.priceHistory...),
		outbox:       cloneMap(t.outbox),
		outboxSeq:    cloneMap(t.outboxSeq),
		nextSeq:      t.nextSeq,
	}
	for k, v := range t.saleItems {
		c.saleItems[k] = append([]m_sale_item.Data(nil), v...)
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store is the in-memory ledger.
type Store struct {
	txMu sync.Mutex   // serializes units of work
	mu   sync.RWMutex // guards t
	t    *tables

	jmu     sync.Mutex
	journal map[*spanner.Mutation]entry

	clock clock.Clock
}

// NewStore creates an empty ledger.
func NewStore(clk clock.Clock) *Store {
	return &Store{
		t:       newTables(),
		journal: make(map[*spanner.Mutation]entry),
		clock:   clk,
	}
}

var _ contracts.Transactor = (*Store)(nil)

// Apply commits a plan atomically.
func (s *Store) Apply(ctx context.Context, plan *committer.CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	ops, err := s.take(plan.Mutations())
	if err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	if err := s.commit(ops); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}

// ReadWrite runs fn with exclusive access to the ledger. Mutations buffered on
// the transaction are applied only if fn succeeds.
func (s *Store) ReadWrite(ctx context.Context, fn func(ctx context.Context, tx committer.Txn) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txn{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx.ops)
}

// txn is the memory store's committer.Txn.
type txn struct {
	store *Store
	ops   []op
}

func (tx *txn) BufferWrite(ms []*spanner.Mutation) error {
	ops, err := tx.store.take(ms)
	if err != nil {
		return err
	}
	tx.ops = append(tx.ops, ops...)
	return nil
}

func (s *Store) checkTxn(tx committer.Txn) error {
	own, ok := tx.(*txn)
	if !ok || own.store != s {
		return committer.ErrForeignTxn
	}
	return nil
}

// record journals the op that applies mut.
func (s *Store) record(mut *spanner.Mutation, apply op) *spanner.Mutation {
	if mut == nil {
		return nil
	}
	s.jmu.Lock()
	defer s.jmu.Unlock()
	s.journal[mut] = entry{apply: apply, created: time.Now()}
	return mut
}

func (s *Store) take(ms []*spanner.Mutation) ([]op, error) {
	s.jmu.Lock()
	defer s.jmu.Unlock()

	ops := make([]op, 0, len(ms))
	for _, m := range ms {
		e, ok := s.journal[m]
		if !ok {
			return nil, ErrUnknownMutation
		}
		delete(s.journal, m)
		ops = append(ops, e.apply)
	}

	cutoff := time.Now().Add(-journalTTL)
	for m, e := range s.journal {
		if e.created.Before(cutoff) {
			delete(s.journal, m)
		}
	}
	return ops, nil
}

func (s *Store) commit(ops []op) error {
	if len(ops) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	for _, apply := range ops {
		if err := apply(s.t); err != nil {
			s.t = snapshot
			return err
		}
	}
	return nil
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.t)
}
