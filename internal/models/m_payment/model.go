package m_payment

import (
	"cloud.google.com/go/spanner"
)

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// OutcomeMut writes the provider outcome columns.
func (m *Model) OutcomeMut(data *Data) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{PaymentID, Status, PhoneNumber, ReceiptNumber, TransactionDate, ResultCode, ResultDesc, RawPayload, UpdatedAt},
		[]interface{}{
			data.PaymentID,
			data.Status,
			data.PhoneNumber,
			data.ReceiptNumber,
			data.TransactionDate,
			data.ResultCode,
			data.ResultDesc,
			data.RawPayload,
			data.UpdatedAt,
		},
	)
}
