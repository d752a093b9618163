package vesting

import (
	"encoding/json"
	"fmt"
)

const (
	allocationInitializedEvent = "AllocationInitialized"
	tokensReleasedEvent        = "TokensReleased"
	memberRegisteredEvent      = "MemberRegistered"
	milestoneAddedEvent        = "MilestoneAdded"
)

type AllocationInitializedEvent struct {
	AllocationID      string `json:"allocationId"`
	VestingType       string `json:"vestingType"`
	TotalAllocation   uint64 `json:"totalAllocation"`
	InitialPercentage uint64 `json:"initialPercentage"`
	CliffMonths       uint64 `json:"cliffMonths"`
	VestingMonths     uint64 `json:"vestingMonths"`
	LaunchTick        uint64 `json:"launchTick"`
}

type TokensReleasedEvent struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Amount        uint64 `json:"amount"`
	TotalReleased uint64 `json:"totalReleased"`
	Tick          uint64 `json:"tick"`
}

type MemberRegisteredEvent struct {
	MemberID             string `json:"memberId"`
	AllocationPercentage uint64 `json:"allocationPercentage"`
	TotalAmount          uint64 `json:"totalAmount"`
}

type MilestoneAddedEvent struct {
	MemberID     string `json:"memberId"`
	TriggerMonth uint64 `json:"triggerMonth"`
	Percentage   uint64 `json:"percentage"`
	Milestones   int    `json:"milestones"`
}

func emitEvent(ctx TransactionContextInterface, name string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding for %s event: %w", name, err)
	}

	if err := ctx.SetEvent(name, payloadJSON); err != nil {
		return fmt.Errorf("failed to set %s event: %w", name, err)
	}

	return nil
}

func EmitAllocationInitialized(ctx TransactionContextInterface, record *AllocationRecord, id string, launchTick uint64) error {
	return emitEvent(ctx, allocationInitializedEvent, AllocationInitializedEvent{
		AllocationID:      id,
		VestingType:       record.VestingType.String(),
		TotalAllocation:   record.TotalAllocation,
		InitialPercentage: record.InitialPercentage,
		CliffMonths:       record.CliffMonths,
		VestingMonths:     record.VestingMonths,
		LaunchTick:        launchTick,
	})
}

func EmitTokensReleased(ctx TransactionContextInterface, id, kind string, amount, totalReleased, tick uint64) error {
	return emitEvent(ctx, tokensReleasedEvent, TokensReleasedEvent{
		ID:            id,
		Kind:          kind,
		Amount:        amount,
		TotalReleased: totalReleased,
		Tick:          tick,
	})
}

func EmitMemberRegistered(ctx TransactionContextInterface, memberID string, percentage, totalAmount uint64) error {
	return emitEvent(ctx, memberRegisteredEvent, MemberRegisteredEvent{
		MemberID:             memberID,
		AllocationPercentage: percentage,
		TotalAmount:          totalAmount,
	})
}

func EmitMilestoneAdded(ctx TransactionContextInterface, memberID string, triggerMonth, percentage uint64, milestones int) error {
	return emitEvent(ctx, milestoneAddedEvent, MilestoneAddedEvent{
		MemberID:     memberID,
		TriggerMonth: triggerMonth,
		Percentage:   percentage,
		Milestones:   milestones,
	})
}
