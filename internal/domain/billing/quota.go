package billing

import (
	"errors"
	"math"
)

// MaxTestersPerApp is the hard cap of pre-verified testers one app can have.
const MaxTestersPerApp = 12

// Quantity bounds for a single_tester checkout.
const (
	MinTesterQuantity = 1
	MaxTesterQuantity = 5
)

var (
	ErrUnitPriceNotConfigured = errors.New("single tester unit price not configured")
	ErrQuotaExceeded          = errors.New("tester quota exceeded")
)

// ComputeAllocatedTesters derives how many testers have been paid for from
// the summed amounts of completed purchases. Fails closed when the unit
// price is unset.
func ComputeAllocatedTesters(totalAmount, unitPrice float64) (int, error) {
	if unitPrice <= 0 {
		return 0, ErrUnitPriceNotConfigured
	}
	if totalAmount <= 0 {
		return 0, nil
	}
	// The totals are sums of prices quoted at the unit price, so nudge past
	// float rounding before flooring (2.97/0.99 must count as 3).
	return int(math.Floor(totalAmount/unitPrice + 1e-9)), nil
}

type AllocationDecision struct {
	Allowed bool
	Reason  string
}

// CanAllocate is the pre-flight gate run before a checkout session is
// created. It is advisory only; the webhook reconciler re-checks after
// payment, since the credit lands asynchronously.
func CanAllocate(allocated, requested int) AllocationDecision {
	if allocated >= MaxTestersPerApp {
		return AllocationDecision{Reason: "already at maximum tester allocation"}
	}
	if allocated+requested > MaxTestersPerApp {
		return AllocationDecision{Reason: "requested quantity exceeds maximum tester allocation"}
	}
	return AllocationDecision{Allowed: true}
}

// ClampTesterQuantity bounds a requested single_tester quantity to [1,5].
func ClampTesterQuantity(q int) int {
	if q < MinTesterQuantity {
		return MinTesterQuantity
	}
	if q > MaxTesterQuantity {
		return MaxTesterQuantity
	}
	return q
}
