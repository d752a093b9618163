package vesting

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AllocationRecord is one top-level vesting bucket. TotalAllocation is fixed
// at initialization; ReleasedAmount only ever advances toward it.
type AllocationRecord struct {
	VestingType       VestingType `json:"vestingType"`
	TotalAllocation   uint64      `json:"totalAllocation"`
	InitialPercentage uint64      `json:"initialPercentage"`
	CliffMonths       uint64      `json:"cliffMonths"`
	VestingMonths     uint64      `json:"vestingMonths"`
	ReleasedAmount    uint64      `json:"releasedAmount"`
	LastReleaseTick   uint64      `json:"lastReleaseTick"`
}

// MemberRecord is a per-individual milestone schedule under the Team bucket.
// TotalAmount snapshots the member's entitlement at registration time.
type MemberRecord struct {
	AllocationPercentage uint64   `json:"allocationPercentage"`
	TotalAmount          uint64   `json:"totalAmount"`
	ReleasedAmount       uint64   `json:"releasedAmount"`
	MilestoneTriggers    []uint64 `json:"milestoneTriggers"`
	MilestonePercentages []uint64 `json:"milestonePercentages"`
}

// LaunchState exists only after the one-shot Initialize; its presence is the
// initialized flag.
type LaunchState struct {
	LaunchTick    uint64 `json:"launchTick"`
	TotalSupply   uint64 `json:"totalSupply"`
	TicksPerMonth uint64 `json:"ticksPerMonth"`
}

func allocationKey(id string) string {
	return allocationKeyPrefix + id
}

func memberKey(id string) string {
	return memberKeyPrefix + id
}

func GetAllocationRecord(ctx TransactionContextInterface, id string) (*AllocationRecord, error) {
	key := allocationKey(id)
	recordAsBytes, err := ctx.GetState(key)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get allocation with key %s", key), err)
	}
	if recordAsBytes == nil {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("allocation %s does not exist", id), ErrNotFound)
	}

	var record AllocationRecord
	if err := json.Unmarshal(recordAsBytes, &record); err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal allocation record", err)
	}

	return &record, nil
}

func SetAllocationRecord(ctx TransactionContextInterface, id string, record *AllocationRecord) error {
	recordAsBytes, err := json.Marshal(record)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal allocation record", err)
	}

	if err := ctx.PutState(allocationKey(id), recordAsBytes); err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set allocation %s", id), err)
	}

	return nil
}

func GetMemberRecord(ctx TransactionContextInterface, memberID string) (*MemberRecord, error) {
	key := memberKey(memberID)
	recordAsBytes, err := ctx.GetState(key)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get member with key %s", key), err)
	}
	if recordAsBytes == nil {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("member %s does not exist", memberID), ErrNotFound)
	}

	var record MemberRecord
	if err := json.Unmarshal(recordAsBytes, &record); err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal member record", err)
	}

	return &record, nil
}

// HasMemberRecord reports existence without the NotFound error of
// GetMemberRecord.
func HasMemberRecord(ctx TransactionContextInterface, memberID string) (bool, error) {
	recordAsBytes, err := ctx.GetState(memberKey(memberID))
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get member %s", memberID), err)
	}
	return recordAsBytes != nil, nil
}

func SetMemberRecord(ctx TransactionContextInterface, memberID string, record *MemberRecord) error {
	recordAsBytes, err := json.Marshal(record)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal member record", err)
	}

	if err := ctx.PutState(memberKey(memberID), recordAsBytes); err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set member %s", memberID), err)
	}

	return nil
}

// GetMemberIndex returns the registered member ids, empty when none exist.
func GetMemberIndex(ctx TransactionContextInterface) ([]string, error) {
	indexAsBytes, err := ctx.GetState(memberIndexKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get member index", err)
	}
	if indexAsBytes == nil {
		return []string{}, nil
	}

	var index []string
	if err := json.Unmarshal(indexAsBytes, &index); err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal member index", err)
	}

	return index, nil
}

func SetMemberIndex(ctx TransactionContextInterface, index []string) error {
	indexAsBytes, err := json.Marshal(index)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal member index", err)
	}

	if err := ctx.PutState(memberIndexKey, indexAsBytes); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set member index", err)
	}

	return nil
}

// GetLaunchState returns (nil, nil) before initialization.
func GetLaunchState(ctx TransactionContextInterface) (*LaunchState, error) {
	launchAsBytes, err := ctx.GetState(launchStateKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get launch state", err)
	}
	if launchAsBytes == nil {
		return nil, nil
	}

	var launch LaunchState
	if err := json.Unmarshal(launchAsBytes, &launch); err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal launch state", err)
	}

	return &launch, nil
}

func SetLaunchState(ctx TransactionContextInterface, launch *LaunchState) error {
	launchAsBytes, err := json.Marshal(launch)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal launch state", err)
	}

	if err := ctx.PutState(launchStateKey, launchAsBytes); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set launch state", err)
	}

	return nil
}
