package vesting

import (
	"fmt"
	"net/http"
)

// VestingType is the closed set of release rules an allocation can carry.
type VestingType int

const (
	Linear VestingType = iota
	Cliff
	Milestone
)

func (v VestingType) String() string {
	switch v {
	case Linear:
		return "Linear"
	case Cliff:
		return "Cliff"
	case Milestone:
		return "Milestone"
	}
	return fmt.Sprintf("VestingType(%d)", int(v))
}

// VestedAmount computes how much of a Linear or Cliff allocation is vested at
// currentTick. All arithmetic floor-divides, so rounding always under-releases.
// Milestone records are computed per member, never here.
func VestedAmount(record *AllocationRecord, currentTick, launchTick, ticksPerMonth uint64) (uint64, error) {
	if ticksPerMonth == 0 {
		return 0, NewCustomError(http.StatusBadRequest, "ticks per month cannot be zero", ErrInvalidParameter)
	}

	monthsElapsed := monthsBetween(launchTick, currentTick, ticksPerMonth)
	initialAmount := percentageOf(record.TotalAllocation, record.InitialPercentage)
	vestingAmount := record.TotalAllocation - initialAmount

	var vestedSoFar uint64
	switch record.VestingType {
	case Linear:
		vestedSoFar = linearVested(vestingAmount, monthsElapsed, record.VestingMonths)
	case Cliff:
		if monthsElapsed < record.CliffMonths {
			vestedSoFar = 0
		} else {
			vestedSoFar = linearVested(vestingAmount, monthsElapsed-record.CliffMonths, record.VestingMonths)
		}
	case Milestone:
		return 0, NewCustomError(http.StatusBadRequest, "milestone vesting is computed per member", ErrInvalidParameter)
	default:
		return 0, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("unknown vesting type %d", record.VestingType), ErrInvalidParameter)
	}

	vested := initialAmount + vestedSoFar
	if vested > record.TotalAllocation {
		vested = record.TotalAllocation
	}

	return vested, nil
}

// linearVested unlocks vestingAmount over vestingMonths. A zero period means
// the full amount is immediately vested.
func linearVested(vestingAmount, monthsElapsed, vestingMonths uint64) uint64 {
	if vestingMonths == 0 {
		return vestingAmount
	}
	if monthsElapsed >= vestingMonths {
		return vestingAmount
	}
	return mulDiv(vestingAmount, monthsElapsed, vestingMonths)
}

// MilestoneEligiblePercentage sums the percentages of all milestones whose
// trigger month has passed, capped at 100. Already-triggered milestones never
// re-trigger because the release path works on this cumulative figure.
func MilestoneEligiblePercentage(record *MemberRecord, monthsElapsed uint64) uint64 {
	var eligible uint64
	for i, trigger := range record.MilestoneTriggers {
		if trigger <= monthsElapsed {
			eligible += record.MilestonePercentages[i]
		}
	}
	if eligible > 100 {
		eligible = 100
	}
	return eligible
}
