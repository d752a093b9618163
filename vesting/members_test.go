package vesting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

func (f *fixture) registerMember(t *testing.T, caller, memberID string, percentage uint64) error {
	t.Helper()
	return f.store.RunTx(caller, tickAtMonth(1), func(ctx vesting.TransactionContextInterface) error {
		return f.engine.RegisterMember(ctx, memberID, percentage)
	})
}

func (f *fixture) addMilestone(t *testing.T, memberID string, triggerMonth, percentage uint64) error {
	t.Helper()
	return f.store.RunTx(testAdmin, tickAtMonth(1), func(ctx vesting.TransactionContextInterface) error {
		return f.engine.AddMilestone(ctx, memberID, triggerMonth, percentage)
	})
}

func (f *fixture) processMember(t *testing.T, tick uint64, memberID string) (*vesting.ReleaseResult, error) {
	t.Helper()
	var result *vesting.ReleaseResult
	err := f.store.RunTx(testAdmin, tick, func(ctx vesting.TransactionContextInterface) error {
		var err error
		result, err = f.engine.ProcessMember(ctx, memberID)
		return err
	})
	return result, err
}

func (f *fixture) member(t *testing.T, memberID string) *vesting.MemberRecord {
	t.Helper()
	var record *vesting.MemberRecord
	err := f.store.RunView("", 0, func(ctx vesting.TransactionContextInterface) error {
		var err error
		record, err = f.engine.GetMember(ctx, memberID)
		return err
	})
	require.NoError(t, err)
	return record
}

func TestRegisterMember(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))

	record := f.member(t, "alice")
	require.Equal(t, uint64(10), record.AllocationPercentage)
	// 10% of the 200M team bucket.
	require.Equal(t, uint64(20_000_000), record.TotalAmount)
	require.Equal(t, uint64(0), record.ReleasedAmount)
	require.Empty(t, record.MilestoneTriggers)
}

func TestRegisterMemberValidation(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	tests := []struct {
		name       string
		memberID   string
		percentage uint64
		want       error
	}{
		{"empty id", "", 10, vesting.ErrInvalidParameter},
		{"id with spaces", "not a valid id", 10, vesting.ErrInvalidParameter},
		{"percentage below minimum", "bob", 4, vesting.ErrInvalidParameter},
		{"percentage above maximum", "bob", 101, vesting.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.registerMember(t, testAdmin, tt.memberID, tt.percentage)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestRegisterMemberRequiresAdministrator(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	err := f.registerMember(t, "someone-else", "alice", 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrUnauthorized))
}

func TestRegisterMemberBeforeInitialize(t *testing.T) {
	f := newFixture(t)

	err := f.registerMember(t, testAdmin, "alice", 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrNotInitialized))
}

func TestRegisterMemberRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))

	err := f.registerMember(t, testAdmin, "alice", 20)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrInvalidParameter))
}

func TestRegisterMemberRejectsOversubscription(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	require.NoError(t, f.registerMember(t, testAdmin, "alice", 60))
	require.NoError(t, f.registerMember(t, testAdmin, "bob", 40))

	err := f.registerMember(t, testAdmin, "carol", 5)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrInvalidParameter))
}

func TestAddMilestone(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))

	require.NoError(t, f.addMilestone(t, "alice", 12, 50))
	require.NoError(t, f.addMilestone(t, "alice", 24, 50))

	record := f.member(t, "alice")
	require.Equal(t, []uint64{12, 24}, record.MilestoneTriggers)
	require.Equal(t, []uint64{50, 50}, record.MilestonePercentages)
}

func TestAddMilestoneUnknownMember(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	err := f.addMilestone(t, "nobody", 12, 50)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrNotFound))
}

func TestAddMilestoneRejectsCumulativeOverHundred(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))

	require.NoError(t, f.addMilestone(t, "alice", 12, 60))
	require.NoError(t, f.addMilestone(t, "alice", 24, 40))

	err := f.addMilestone(t, "alice", 36, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrInvalidParameter))
}

func TestAddMilestoneRejectsZeroPercentage(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))

	err := f.addMilestone(t, "alice", 12, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrInvalidParameter))
}

func TestAddMilestoneEnforcesMaximumCount(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))

	for i := 0; i < vesting.MaxMilestones; i++ {
		require.NoError(t, f.addMilestone(t, "alice", uint64(i+1), 10))
	}

	err := f.addMilestone(t, "alice", 99, 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrInvalidParameter))
}

func TestProcessMemberBeforeCliff(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))
	require.NoError(t, f.addMilestone(t, "alice", 6, 100))

	// The team bucket cliff (12 months) gates members even when their own
	// milestone already triggered.
	_, err := f.processMember(t, tickAtMonth(6), "alice")
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrCliffNotReached))
}

func TestProcessMemberReleasesCumulatively(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))
	require.NoError(t, f.addMilestone(t, "alice", 12, 50))
	require.NoError(t, f.addMilestone(t, "alice", 24, 50))

	// First milestone: 50% of 20M.
	first, err := f.processMember(t, tickAtMonth(12), "alice")
	require.NoError(t, err)
	require.True(t, first.Released)
	require.Equal(t, uint64(10_000_000), first.Amount)
	require.Equal(t, uint64(10_000_000), f.balance(t, "alice"))

	// Repeat at the same tick is a no-op.
	repeat, err := f.processMember(t, tickAtMonth(12), "alice")
	require.NoError(t, err)
	require.False(t, repeat.Released)
	require.Equal(t, uint64(0), repeat.Amount)

	// Second milestone releases only the delta.
	second, err := f.processMember(t, tickAtMonth(24), "alice")
	require.NoError(t, err)
	require.True(t, second.Released)
	require.Equal(t, uint64(10_000_000), second.Amount)
	require.Equal(t, uint64(20_000_000), f.balance(t, "alice"))

	record := f.member(t, "alice")
	require.Equal(t, record.TotalAmount, record.ReleasedAmount)
}

func TestProcessMemberTransferFailureLeavesRecordUntouched(t *testing.T) {
	store, stub, engine := newStubFixture(t)

	err := store.RunTx(testAdmin, tickAtMonth(1), func(ctx vesting.TransactionContextInterface) error {
		if err := engine.RegisterMember(ctx, "alice", 10); err != nil {
			return err
		}
		return engine.AddMilestone(ctx, "alice", 12, 100)
	})
	require.NoError(t, err)

	stub.rejectTo = "alice"
	err = store.RunTx(testAdmin, tickAtMonth(12), func(ctx vesting.TransactionContextInterface) error {
		_, err := engine.ProcessMember(ctx, "alice")
		return err
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrTransferFailed))

	err = store.RunView("", 0, func(ctx vesting.TransactionContextInterface) error {
		record, err := engine.GetMember(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, uint64(0), record.ReleasedAmount)
		return nil
	})
	require.NoError(t, err)
}

func TestProcessMemberWithNoTriggeredMilestones(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, f.registerMember(t, testAdmin, "alice", 10))
	require.NoError(t, f.addMilestone(t, "alice", 36, 100))

	result, err := f.processMember(t, tickAtMonth(12), "alice")
	require.NoError(t, err)
	require.False(t, result.Released)
	require.Equal(t, uint64(0), result.Amount)
}

func TestProcessMemberUnknownMember(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	_, err := f.processMember(t, tickAtMonth(12), "nobody")
	require.Error(t, err)
	require.True(t, errors.Is(err, vesting.ErrNotFound))
}

func TestIsMemberIDValid(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"alice", true},
		{"alice-01", true},
		{"a.b_c-d", true},
		{"", false},
		{"-leading-dash", false},
		{"has space", false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.valid, vesting.IsMemberIDValid(tt.id), tt.id)
	}
}
