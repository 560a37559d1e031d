package mpesa

import "fmt"

// ProviderError is a rejection reported by Daraja. Description carries the
// provider's text verbatim so it can be shown to the cashier.
type ProviderError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mpesa: provider returned HTTP %d (%s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("mpesa: provider rejected request (%s): %s", e.Code, e.Description)
}
