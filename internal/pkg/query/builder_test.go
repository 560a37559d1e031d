package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SelectAll(t *testing.T) {
	stmt := From("sales").Build()

	assert.Equal(t, "SELECT * FROM sales", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestBuilder_LowStockQuery(t *testing.T) {
	stmt := From("products").
		Select("product_id", "name", "stock_quantity", "min_stock_level").
		Where(Eq("is_active", true)).
		Where(ColumnLte("stock_quantity", "min_stock_level")).
		OrderBy("stock_quantity", Asc).
		OrderBy("product_id", Asc).
		Limit(25).
		Offset(50).
		Build()

	assert.Equal(t,
		"SELECT product_id, name, stock_quantity, min_stock_level FROM products "+
			"WHERE is_active = @p0 AND stock_quantity <= min_stock_level "+
			"ORDER BY stock_quantity ASC, product_id ASC LIMIT @limit OFFSET @offset",
		stmt.SQL)
	assert.Equal(t, map[string]interface{}{
		"p0":     true,
		"limit":  int64(25),
		"offset": int64(50),
	}, stmt.Params)
}

func TestBuilder_ParamIndexesSkipParameterlessConditions(t *testing.T) {
	stmt := From("outbox_events").
		Where(IsNull("processed_at")).
		Where(Eq("status", "pending")).
		Where(Lt("retry_count", int64(5))).
		Build()

	assert.Equal(t,
		"SELECT * FROM outbox_events WHERE processed_at IS NULL AND status = @p0 AND retry_count < @p1",
		stmt.SQL)
	assert.Equal(t, map[string]interface{}{"p0": "pending", "p1": int64(5)}, stmt.Params)
}

func TestBuilder_InConsumesOneParamPerValue(t *testing.T) {
	stmt := From("outbox_events").
		Select("event_id").
		Where(In("status", "completed", "failed")).
		Where(Lte("created_at", "2026-01-01T00:00:00Z")).
		Build()

	assert.Equal(t,
		"SELECT event_id FROM outbox_events WHERE status IN (@p0, @p1) AND created_at <= @p2",
		stmt.SQL)
	assert.Len(t, stmt.Params, 3)
}

func TestBuilder_CountDropsOrderingAndPagination(t *testing.T) {
	base := From("products").
		Select("product_id").
		Where(Eq("is_active", true)).
		OrderBy("name", Desc).
		Limit(10).
		Offset(10)

	count := base.Count().Build()
	assert.Equal(t, "SELECT COUNT(*) FROM products WHERE is_active = @p0", count.SQL)
	assert.Equal(t, map[string]interface{}{"p0": true}, count.Params)

	page := base.Build()
	assert.Contains(t, page.SQL, "ORDER BY name DESC LIMIT @limit OFFSET @offset")
}

func TestBuilder_Immutability(t *testing.T) {
	base := From("payments").Select("payment_id")

	a := base.Where(Eq("status", "pending")).Build()
	b := base.Where(Eq("sale_id", "s-1")).Build()

	assert.Contains(t, a.SQL, "status = @p0")
	assert.NotContains(t, a.SQL, "sale_id")
	assert.Contains(t, b.SQL, "sale_id = @p0")
	assert.NotContains(t, b.SQL, "status")
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name      string
		cond      Condition
		wantSQL   string
		wantParam bool
	}{
		{"eq", Eq("status", "pending"), "status = @p3", true},
		{"ne", Ne("status", "pending"), "status != @p3", true},
		{"gt", Gt("stock_quantity", int64(0)), "stock_quantity > @p3", true},
		{"gte", Gte("created_at", "x"), "created_at >= @p3", true},
		{"is null", IsNull("receipt_number"), "receipt_number IS NULL", false},
		{"is not null", IsNotNull("receipt_number"), "receipt_number IS NOT NULL", false},
		{"empty in", In("status"), "FALSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := tt.cond.SQL(3)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantParam {
				require.Len(t, params, 1)
				assert.Contains(t, params, "p3")
			} else {
				assert.Empty(t, params)
			}
		})
	}
}

func TestBuilder_String(t *testing.T) {
	str := From("sales").Where(Eq("status", "pending")).String()
	assert.Contains(t, str, "SQL: SELECT * FROM sales WHERE status = @p0")
	assert.Contains(t, str, "Params:")
}

func TestBuilder_ProductSearch(t *testing.T) {
	stmt := From("products").
		Where(Eq("is_active", true)).
		Where(ContainsFold("Soap", "name", "sku")).
		Where(Gt("stock_quantity", int64(0))).
		OrderBy("name", Asc).
		Build()

	assert.Equal(t,
		"SELECT * FROM products WHERE is_active = @p0 AND "+
			"(LOWER(name) LIKE @p1 OR LOWER(sku) LIKE @p1) AND stock_quantity > @p2 "+
			"ORDER BY name ASC",
		stmt.SQL)
	assert.Equal(t, map[string]interface{}{
		"p0": true,
		"p1": "%soap%",
		"p2": int64(0),
	}, stmt.Params)
}

func TestContainsFold_EscapesWildcards(t *testing.T) {
	_, params := ContainsFold(`50%_OFF\`, "name").SQL(0)
	assert.Equal(t, `%50\%\_off\\%`, params["p0"])

	sql, params := ContainsFold("soap").SQL(0)
	assert.Equal(t, "FALSE", sql)
	assert.Empty(t, params)
}
