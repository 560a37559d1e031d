package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const schema = `-- comment
CREATE TABLE categories (
  category_id STRING(36) NOT NULL,
) PRIMARY KEY (category_id);

CREATE UNIQUE INDEX idx_products_sku ON products (sku);
-- trailing comment
CREATE INDEX idx_sales_created ON sales (created_at DESC);
`

func TestSplitDDLStatements(t *testing.T) {
	stmts := splitDDLStatements(schema)

	assert.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE categories (\ncategory_id STRING(36) NOT NULL,\n) PRIMARY KEY (category_id)", stmts[0])
	assert.Equal(t, "CREATE UNIQUE INDEX idx_products_sku ON products (sku)", stmts[1])
}

func TestPendingStatements_SkipsExistingObjects(t *testing.T) {
	stmts := splitDDLStatements(schema)
	existing := createdObjects([]string{
		"CREATE TABLE categories (\n  category_id STRING(36) NOT NULL,\n) PRIMARY KEY(category_id)",
		"CREATE UNIQUE INDEX idx_products_sku ON products(sku)",
	})

	pending := pendingStatements(stmts, existing)

	assert.Equal(t, []string{"CREATE INDEX idx_sales_created ON sales (created_at DESC)"}, pending)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		stmt string
		want string
		ok   bool
	}{
		{"CREATE TABLE Sales (id INT64) PRIMARY KEY (id)", "TABLE sales", true},
		{"create null_filtered index idx_x on t (a)", "INDEX idx_x", true},
		{"ALTER TABLE sales ADD COLUMN note STRING(MAX)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			got, ok := objectKey(tt.stmt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
