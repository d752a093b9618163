package vesting

// seedAllocation creates one allocation record at launch. ReleasedAmount is
// pre-seeded to the initial amount and the caller pays that amount out of
// custody in the same transaction; the calculator reports the same figure as
// vested at month zero, making the first process call a no-op.
func seedAllocation(
	ctx TransactionContextInterface,
	id AllocationID,
	vestingType VestingType,
	totalAllocation uint64,
	initialPercentage uint64,
	cliffMonths uint64,
	vestingMonths uint64,
	launchTick uint64,
) (*AllocationRecord, error) {
	record := &AllocationRecord{
		VestingType:       vestingType,
		TotalAllocation:   totalAllocation,
		InitialPercentage: initialPercentage,
		CliffMonths:       cliffMonths,
		VestingMonths:     vestingMonths,
		ReleasedAmount:    percentageOf(totalAllocation, initialPercentage),
		LastReleaseTick:   launchTick,
	}

	if err := SetAllocationRecord(ctx, id.String(), record); err != nil {
		return nil, err
	}

	if err := EmitAllocationInitialized(ctx, record, id.String(), launchTick); err != nil {
		return nil, err
	}

	return record, nil
}
