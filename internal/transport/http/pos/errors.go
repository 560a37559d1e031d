package pos

import (
	"errors"
	"net/http"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_sales"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/update_price"
)

// errInternal is the only message a 500 carries. Details go to the log.
const errInternal = "internal server error"

// mapDomainErrorToHTTP converts domain errors to an HTTP status and the
// message shown to the client.
func mapDomainErrorToHTTP(err error) (int, string) {
	switch {
	// Lookups
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrDiscountNotFound),
		errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, err.Error()

	// State conflicts
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrAlreadyInactive),
		errors.Is(err, domain.ErrPaymentAlreadyFinalized),
		errors.Is(err, domain.ErrInvalidSaleTransition):
		return http.StatusConflict, err.Error()

	// Well-formed requests the business rules refuse
	case errors.Is(err, domain.ErrProductNotActive),
		errors.Is(err, domain.ErrInsufficientTender),
		errors.Is(err, domain.ErrInvalidPaymentAmount):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, domain.ErrPaymentInitiationFailed):
		return http.StatusBadGateway, err.Error()

	// Malformed input
	case errors.Is(err, domain.ErrInvalidMoney),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidCostPrice),
		errors.Is(err, domain.ErrEmptySKU),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidStockLevel),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAdjustment),
		errors.Is(err, domain.ErrInvalidInventoryKind),
		errors.Is(err, domain.ErrInvalidLoyaltyTier),
		errors.Is(err, domain.ErrInvalidDiscountPeriod),
		errors.Is(err, domain.ErrInvalidDiscountPercent),
		errors.Is(err, domain.ErrInvalidMinimumAmount),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingCashier),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidPhoneNumber),
		errors.Is(err, domain.ErrInvalidTender),
		errors.Is(err, update_price.ErrMissingChangedBy),
		errors.Is(err, contracts.ErrInvalidPageToken),
		errors.Is(err, list_sales.ErrInvalidDateRange),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()

	default:
		return http.StatusInternalServerError, errInternal
	}
}
