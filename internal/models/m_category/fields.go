package m_category

const TableName = "categories"

const (
	CategoryID  = "category_id"
	Name        = "name"
	Description = "description"
	CreatedAt   = "created_at"
)

func Columns() []string {
	return []string{CategoryID, Name, Description, CreatedAt}
}
