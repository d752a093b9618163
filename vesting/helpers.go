package vesting

import (
	"math/big"
	"net/http"
	"regexp"
)

const memberIDPattern = `^[0-9a-zA-Z][0-9a-zA-Z_.\-]{0,63}$`

var memberIDRegex = regexp.MustCompile(memberIDPattern)

// mulDiv returns a*b/den with floor division, routing the multiplication
// through big.Int so supply-scale amounts cannot overflow uint64.
func mulDiv(a, b, den uint64) uint64 {
	if den == 0 {
		return 0
	}

	product := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	product.Div(product, new(big.Int).SetUint64(den))

	return product.Uint64()
}

func percentageOf(amount, percentage uint64) uint64 {
	return mulDiv(amount, percentage, 100)
}

// monthsBetween floor-divides elapsed ticks into whole months. A currentTick
// before launchTick counts as zero months.
func monthsBetween(launchTick, currentTick, ticksPerMonth uint64) uint64 {
	if currentTick <= launchTick {
		return 0
	}
	return (currentTick - launchTick) / ticksPerMonth
}

func isValidAllocationID(id string) bool {
	for _, allocation := range AllocationOrder {
		if allocation.String() == id {
			return true
		}
	}
	return false
}

func IsMemberIDValid(memberID string) bool {
	if memberID == "" {
		return false
	}
	return memberIDRegex.MatchString(memberID)
}

// requireAdministrator resolves the caller and checks the administrator
// capability. It runs before any computation in every mutating entry point.
func (e *Engine) requireAdministrator(ctx TransactionContextInterface) (string, error) {
	caller, err := ctx.GetUserID()
	if err != nil {
		return "", NewCustomError(http.StatusBadRequest, "failed to get caller id", err)
	}

	ok, err := e.acl.IsAdministrator(ctx, caller)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, "administrator check failed", err)
	}
	if !ok {
		return "", NewCustomError(http.StatusUnauthorized, "caller is not an administrator", ErrUnauthorized)
	}

	return caller, nil
}

// requireLaunched loads the launch state, failing with NotInitialized when
// the one-shot initializer has not run.
func requireLaunched(ctx TransactionContextInterface) (*LaunchState, error) {
	launch, err := GetLaunchState(ctx)
	if err != nil {
		return nil, err
	}
	if launch == nil {
		return nil, NewCustomError(http.StatusConflict, "vesting engine is not initialized", ErrNotInitialized)
	}
	return launch, nil
}
