package domain

// Settlement is the tender recorded on a sale.
type Settlement struct {
	AmountTendered *Money
	ChangeDue      *Money
}

// SettleTender applies the tender rules for method. Cash returns change and
// handles underpayment per policy; a nil cash tender means exact money.
// Every other method is charged exactly the final amount.
func SettleTender(method PaymentMethod, tendered, finalAmount *Money, policy CashUnderpaymentPolicy) (Settlement, error) {
	if method != PaymentCash {
		return Settlement{AmountTendered: finalAmount.Copy(), ChangeDue: Zero()}, nil
	}

	if tendered == nil {
		return Settlement{AmountTendered: finalAmount.Copy(), ChangeDue: Zero()}, nil
	}
	if tendered.IsNegative() {
		return Settlement{}, ErrInvalidTender
	}
	if tendered.LessThan(finalAmount) {
		if policy == UnderpaymentReject {
			return Settlement{}, ErrInsufficientTender
		}
		return Settlement{AmountTendered: tendered.Copy(), ChangeDue: Zero()}, nil
	}
	return Settlement{
		AmountTendered: tendered.Copy(),
		ChangeDue:      tendered.Subtract(finalAmount),
	}, nil
}
