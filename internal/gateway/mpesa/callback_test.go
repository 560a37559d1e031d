package mpesa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

const successCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "Balance"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

const cancelledCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user"
    }
  }
}`

func TestParseCallback_Success(t *testing.T) {
	cb, err := ParseCallback([]byte(successCallback))
	require.NoError(t, err)

	assert.True(t, cb.Succeeded())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", cb.MerchantRequestID)
	assert.Equal(t, "NLJ7RT61SV", cb.ReceiptNumber)
	assert.Equal(t, "254708374149", cb.PhoneNumber)
	require.NotNil(t, cb.Amount)
	assert.True(t, cb.Amount.Equals(domain.FromUnits(1)))
	require.NotNil(t, cb.TransactionDate)
	assert.Equal(t, time.Date(2019, 12, 19, 7, 21, 15, 0, time.UTC), *cb.TransactionDate)
	assert.Equal(t, successCallback, cb.Raw)
}

func TestParseCallback_Cancelled(t *testing.T) {
	cb, err := ParseCallback([]byte(cancelledCallback))
	require.NoError(t, err)

	assert.False(t, cb.Succeeded())
	assert.Equal(t, int64(1032), cb.ResultCode)
	assert.Equal(t, "Request cancelled by user", cb.ResultDesc)
	assert.Nil(t, cb.Amount)
	assert.Empty(t, cb.ReceiptNumber)
}

func TestParseCallback_Malformed(t *testing.T) {
	for name, body := range map[string]string{
		"not json":         `<xml/>`,
		"missing callback": `{"Body":{}}`,
		"missing checkout": `{"Body":{"stkCallback":{"ResultCode":0}}}`,
		"bad result code":  `{"Body":{"stkCallback":{"CheckoutRequestID":"x","ResultCode":"zero"}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCallback([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedCallback)
		})
	}
}

func TestParseCallback_UnreadableMetadataIsSkipped(t *testing.T) {
	body := `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1.005},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": "yesterday"},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

	cb, err := ParseCallback([]byte(body))
	require.NoError(t, err)

	assert.True(t, cb.Succeeded())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)
	assert.Equal(t, "NLJ7RT61SV", cb.ReceiptNumber)
	assert.Equal(t, "254708374149", cb.PhoneNumber)
	assert.Nil(t, cb.Amount)
	assert.Nil(t, cb.TransactionDate)
	assert.Equal(t, []string{"Amount=1.005", "TransactionDate=yesterday"}, cb.Skipped)
}
