package pos

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// CashierHeader carries the signed-in cashier on till requests.
const CashierHeader = "X-Cashier-ID"

// ErrUnauthenticated is returned by an Authenticator that cannot identify the
// caller.
var ErrUnauthenticated = errors.New("cashier identity is required")

// Authenticator resolves the cashier behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// HeaderAuthenticator trusts the X-Cashier-ID header. It is meant for tills
// behind a gateway that has already authenticated the operator.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(CashierHeader))
	if id == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}

type cashierKey struct{}

// requireCashier rejects requests without a cashier with 401 and stores the
// id in the request context otherwise.
func (h *Handler) requireCashier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.auth.Authenticate(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Error: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cashierKey{}, id)))
	})
}

func cashierFrom(ctx context.Context) string {
	id, _ := ctx.Value(cashierKey{}).(string)
	return id
}
