package committer

import (
	"errors"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTxn struct {
	buffered [][]*spanner.Mutation
	err      error
}

func (r *recordingTxn) BufferWrite(ms []*spanner.Mutation) error {
	if r.err != nil {
		return r.err
	}
	r.buffered = append(r.buffered, ms)
	return nil
}

func TestCommitPlan_Add(t *testing.T) {
	plan := NewPlan()
	assert.True(t, plan.IsEmpty())

	plan.Add(spanner.Insert("sales", []string{"sale_id"}, []interface{}{"s-1"}))
	plan.Add(nil)
	plan.AddMultiple([]*spanner.Mutation{
		spanner.Insert("sale_items", []string{"sale_id", "item_id"}, []interface{}{"s-1", "i-1"}),
		nil,
	})

	assert.Equal(t, 2, plan.Count())
	assert.False(t, plan.IsEmpty())
	assert.Len(t, plan.Mutations(), 2)
}

func TestCommitPlan_BufferOn(t *testing.T) {
	t.Run("empty plan buffers nothing", func(t *testing.T) {
		tx := &recordingTxn{}
		require.NoError(t, NewPlan().BufferOn(tx))
		assert.Empty(t, tx.buffered)
	})

	t.Run("buffers all mutations in one call", func(t *testing.T) {
		tx := &recordingTxn{}
		plan := NewPlan()
		plan.Add(spanner.Insert("sales", []string{"sale_id"}, []interface{}{"s-1"}))
		plan.Add(spanner.Insert("sales", []string{"sale_id"}, []interface{}{"s-2"}))

		require.NoError(t, plan.BufferOn(tx))
		require.Len(t, tx.buffered, 1)
		assert.Len(t, tx.buffered[0], 2)
	})

	t.Run("wraps buffer errors", func(t *testing.T) {
		boom := errors.New("boom")
		tx := &recordingTxn{err: boom}
		plan := NewPlan()
		plan.Add(spanner.Insert("sales", []string{"sale_id"}, []interface{}{"s-1"}))

		err := plan.BufferOn(tx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestReadWriteTxn_RejectsForeignTxn(t *testing.T) {
	_, err := ReadWriteTxn(&recordingTxn{})
	assert.ErrorIs(t, err, ErrForeignTxn)
}
