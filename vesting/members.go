package vesting

import (
	"fmt"
	"net/http"
)

// RegisterMember creates one milestone-vested member record under the Team
// bucket. The entitlement snapshots the team bucket's total at registration
// time; the cumulative percentage across all members may not exceed 100.
func (e *Engine) RegisterMember(ctx TransactionContextInterface, memberID string, percentage uint64) error {
	if _, err := e.requireAdministrator(ctx); err != nil {
		return err
	}

	if _, err := requireLaunched(ctx); err != nil {
		return err
	}

	if !IsMemberIDValid(memberID) {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("invalid member id %q", memberID), ErrInvalidParameter)
	}
	if percentage < MinMemberPercentage || percentage > MaxMemberPercentage {
		return NewCustomError(http.StatusBadRequest,
			fmt.Sprintf("member percentage %d outside [%d,%d]", percentage, MinMemberPercentage, MaxMemberPercentage),
			ErrInvalidParameter)
	}

	team, err := GetAllocationRecord(ctx, Team.String())
	if err != nil {
		return err
	}

	exists, err := HasMemberRecord(ctx, memberID)
	if err != nil {
		return err
	}
	if exists {
		return NewCustomError(http.StatusConflict, fmt.Sprintf("member %s is already registered", memberID), ErrInvalidParameter)
	}

	index, err := GetMemberIndex(ctx)
	if err != nil {
		return err
	}

	var registered uint64
	for _, id := range index {
		member, err := GetMemberRecord(ctx, id)
		if err != nil {
			return err
		}
		registered += member.AllocationPercentage
	}
	if registered+percentage > 100 {
		return NewCustomError(http.StatusBadRequest,
			fmt.Sprintf("team bucket oversubscribed: %d%% registered, %d%% requested", registered, percentage),
			ErrInvalidParameter)
	}

	totalAmount := percentageOf(team.TotalAllocation, percentage)
	if totalAmount == 0 {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("zero entitlement for member %s", memberID), ErrInvalidParameter)
	}

	record := &MemberRecord{
		AllocationPercentage: percentage,
		TotalAmount:          totalAmount,
		ReleasedAmount:       0,
	}
	if err := SetMemberRecord(ctx, memberID, record); err != nil {
		return err
	}

	if err := SetMemberIndex(ctx, append(index, memberID)); err != nil {
		return err
	}

	if err := EmitMemberRegistered(ctx, memberID, percentage, totalAmount); err != nil {
		return err
	}

	e.log.Info("member registered", "member", memberID, "percentage", percentage, "totalAmount", totalAmount)

	return nil
}

// AddMilestone appends one trigger/percentage pair to a member's schedule.
// The cumulative milestone percentage is capped at 100 at write time; trigger
// months need not be increasing, the processor scans by elapsed months.
func (e *Engine) AddMilestone(ctx TransactionContextInterface, memberID string, triggerMonth, percentage uint64) error {
	if _, err := e.requireAdministrator(ctx); err != nil {
		return err
	}

	if _, err := requireLaunched(ctx); err != nil {
		return err
	}

	if percentage == 0 || percentage > 100 {
		return NewCustomError(http.StatusBadRequest, fmt.Sprintf("milestone percentage %d outside (0,100]", percentage), ErrInvalidParameter)
	}

	record, err := GetMemberRecord(ctx, memberID)
	if err != nil {
		return err
	}

	if len(record.MilestoneTriggers) >= MaxMilestones {
		return NewCustomError(http.StatusBadRequest,
			fmt.Sprintf("member %s already has the maximum of %d milestones", memberID, MaxMilestones),
			ErrInvalidParameter)
	}

	var committed uint64
	for _, pct := range record.MilestonePercentages {
		committed += pct
	}
	if committed+percentage > 100 {
		return NewCustomError(http.StatusBadRequest,
			fmt.Sprintf("milestones for %s would exceed 100%%: %d%% committed, %d%% requested", memberID, committed, percentage),
			ErrInvalidParameter)
	}

	record.MilestoneTriggers = append(record.MilestoneTriggers, triggerMonth)
	record.MilestonePercentages = append(record.MilestonePercentages, percentage)
	if err := SetMemberRecord(ctx, memberID, record); err != nil {
		return err
	}

	if err := EmitMilestoneAdded(ctx, memberID, triggerMonth, percentage, len(record.MilestoneTriggers)); err != nil {
		return err
	}

	return nil
}

// ProcessMember releases the member's cumulative eligible milestone amount.
// The team bucket's cliff gates all member releases. Same atomicity contract
// as ProcessAllocation: staged record write, then transfer, or neither.
func (e *Engine) ProcessMember(ctx TransactionContextInterface, memberID string) (*ReleaseResult, error) {
	if _, err := e.requireAdministrator(ctx); err != nil {
		return nil, err
	}

	launch, err := requireLaunched(ctx)
	if err != nil {
		return nil, err
	}

	record, err := GetMemberRecord(ctx, memberID)
	if err != nil {
		return nil, err
	}

	team, err := GetAllocationRecord(ctx, Team.String())
	if err != nil {
		return nil, err
	}

	now := ctx.GetTxTick()
	monthsElapsed := monthsBetween(launch.LaunchTick, now, launch.TicksPerMonth)
	if monthsElapsed < team.CliffMonths {
		return nil, NewCustomError(http.StatusBadRequest,
			fmt.Sprintf("team cliff of %d months not reached, %d elapsed", team.CliffMonths, monthsElapsed),
			ErrCliffNotReached)
	}

	eligible := percentageOf(record.TotalAmount, MilestoneEligiblePercentage(record, monthsElapsed))
	if eligible < record.ReleasedAmount {
		return nil, NewCustomError(http.StatusInternalServerError,
			fmt.Sprintf("eligible amount %d below released amount %d for member %s", eligible, record.ReleasedAmount, memberID),
			ErrInvalidParameter)
	}

	toRelease := eligible - record.ReleasedAmount
	if toRelease == 0 {
		recordRelease("member", 0)
		return &ReleaseResult{ID: memberID, Amount: 0, Released: false, Tick: now}, nil
	}

	record.ReleasedAmount = eligible
	if err := SetMemberRecord(ctx, memberID, record); err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("member vesting release %s at tick %d", memberID, now)
	if err := e.ledger.Transfer(ctx, toRelease, e.cfg.CustodyAccount, memberID, memo); err != nil {
		return nil, NewCustomError(http.StatusBadGateway, fmt.Sprintf("ledger rejected release for member %s", memberID), fmt.Errorf("%w: %w", ErrTransferFailed, err))
	}

	if err := EmitTokensReleased(ctx, memberID, "member", toRelease, record.ReleasedAmount, now); err != nil {
		return nil, err
	}

	recordRelease("member", toRelease)
	e.log.Info("member released", "member", memberID, "amount", toRelease, "tick", now)

	return &ReleaseResult{ID: memberID, Amount: toRelease, Released: true, Tick: now}, nil
}

// GetMember returns the raw member record.
func (e *Engine) GetMember(ctx TransactionContextInterface, memberID string) (*MemberRecord, error) {
	return GetMemberRecord(ctx, memberID)
}
