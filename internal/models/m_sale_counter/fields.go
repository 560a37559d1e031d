package m_sale_counter

// sale_counters holds the last sale number sequence issued per day.
const (
	TableName = "sale_counters"

	Day       = "day"
	LastSeq   = "last_seq"
	UpdatedAt = "updated_at"
)

func Columns() []string {
	return []string{Day, LastSeq, UpdatedAt}
}
