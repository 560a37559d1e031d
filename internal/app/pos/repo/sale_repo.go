package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_sale"
	"github.com/light-bringer/pos-service/internal/models/m_sale_counter"
	"github.com/light-bringer/pos-service/internal/models/m_sale_item"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// SaleRepo implements SaleRepository for Spanner.
type SaleRepo struct {
	saleModel    *m_sale.Model
	itemModel    *m_sale_item.Model
	counterModel *m_sale_counter.Model
}

// NewSaleRepo creates a new SaleRepo. Every read goes through a read-write
// transaction, so no client is held.
func NewSaleRepo() contracts.SaleRepository {
	return &SaleRepo{
		saleModel:    m_sale.NewModel(),
		itemModel:    m_sale_item.NewModel(),
		counterModel: m_sale_counter.NewModel(),
	}
}

// InsertMuts creates the header mutation followed by the item mutations.
func (r *SaleRepo) InsertMuts(sale *domain.Sale) []*spanner.Mutation {
	header, items := SaleToData(sale)
	muts := make([]*spanner.Mutation, 0, len(items)+1)
	muts = append(muts, r.saleModel.InsertMut(header))
	for _, item := range items {
		muts = append(muts, r.itemModel.InsertMut(item))
	}
	return muts
}

// UpdateMut writes a status change. Everything else on a sale is immutable.
func (r *SaleRepo) UpdateMut(sale *domain.Sale) *spanner.Mutation {
	if !sale.Changes().Dirty(domain.FieldSaleStatus) {
		return nil
	}
	return r.saleModel.StatusMut(sale.ID(), string(sale.Status()), sale.UpdatedAt())
}

// GetByIDTx loads a sale and its items.
func (r *SaleRepo) GetByIDTx(ctx context.Context, tx committer.Txn, saleID string) (*domain.Sale, error) {
	rw, err := committer.ReadWriteTxn(tx)
	if err != nil {
		return nil, err
	}

	row, err := rw.ReadRow(ctx, m_sale.TableName, spanner.Key{saleID}, m_sale.Columns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to read sale: %w", err)
	}
	var header m_sale.Data
	if err := row.ToStruct(&header); err != nil {
		return nil, fmt.Errorf("failed to parse sale: %w", err)
	}

	items, err := readItems(rw.Read(ctx, m_sale_item.TableName, r.itemModel.SaleKeys(saleID), m_sale_item.Columns()))
	if err != nil {
		return nil, err
	}
	return SaleFromData(&header, items)
}

// NextNumberTx reads the day's counter and returns the next sale number with
// the mutation that stores it.
func (r *SaleRepo) NextNumberTx(ctx context.Context, tx committer.Txn, now time.Time) (string, *spanner.Mutation, error) {
	rw, err := committer.ReadWriteTxn(tx)
	if err != nil {
		return "", nil, err
	}

	day := now.Format("20060102")
	var last int64
	row, err := rw.ReadRow(ctx, m_sale_counter.TableName, spanner.Key{day}, []string{m_sale_counter.LastSeq})
	switch {
	case err == nil:
		if err := row.Column(0, &last); err != nil {
			return "", nil, fmt.Errorf("failed to parse sale counter: %w", err)
		}
	case spanner.ErrCode(err) == codes.NotFound:
	default:
		return "", nil, fmt.Errorf("failed to read sale counter: %w", err)
	}

	next := last + 1
	mut := r.counterModel.UpsertMut(&m_sale_counter.Data{Day: day, LastSeq: next, UpdatedAt: now})
	return domain.FormatSaleNumber(now, next), mut, nil
}

func readItems(iter *spanner.RowIterator) ([]*m_sale_item.Data, error) {
	defer iter.Stop()

	var items []*m_sale_item.Data
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sale items: %w", err)
		}
		var item m_sale_item.Data
		if err := row.ToStruct(&item); err != nil {
			return nil, fmt.Errorf("failed to parse sale item: %w", err)
		}
		items = append(items, &item)
	}
	return items, nil
}
