package memory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anya-org/Anya-core-sub010/store/memory"
	"github.com/Anya-org/Anya-core-sub010/vesting"
)

func TestRunTxCommitsOnSuccess(t *testing.T) {
	store := memory.New()

	err := store.RunTx("caller", 42, func(ctx vesting.TransactionContextInterface) error {
		return ctx.PutState("key", []byte("value"))
	})
	require.NoError(t, err)

	err = store.RunView("", 0, func(ctx vesting.TransactionContextInterface) error {
		value, err := ctx.GetState("key")
		require.NoError(t, err)
		require.Equal(t, []byte("value"), value)
		return nil
	})
	require.NoError(t, err)
}

func TestRunTxDiscardsOnError(t *testing.T) {
	store := memory.New()

	err := store.RunTx("caller", 42, func(ctx vesting.TransactionContextInterface) error {
		if err := ctx.PutState("key", []byte("value")); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	err = store.RunView("", 0, func(ctx vesting.TransactionContextInterface) error {
		value, err := ctx.GetState("key")
		require.NoError(t, err)
		require.Nil(t, value)
		return nil
	})
	require.NoError(t, err)
}

func TestTxContextReadsOwnWrites(t *testing.T) {
	store := memory.New()

	err := store.RunTx("caller", 42, func(ctx vesting.TransactionContextInterface) error {
		require.NoError(t, ctx.PutState("key", []byte("staged")))

		value, err := ctx.GetState("key")
		require.NoError(t, err)
		require.Equal(t, []byte("staged"), value)
		return nil
	})
	require.NoError(t, err)
}

func TestTxContextCallerAndTick(t *testing.T) {
	store := memory.New()

	err := store.RunView("alice", 7, func(ctx vesting.TransactionContextInterface) error {
		caller, err := ctx.GetUserID()
		require.NoError(t, err)
		require.Equal(t, "alice", caller)
		require.Equal(t, uint64(7), ctx.GetTxTick())
		return nil
	})
	require.NoError(t, err)
}

func TestTxContextCapturesEvents(t *testing.T) {
	store := memory.New()

	ctx := store.NewTxContext("caller", 1)
	require.NoError(t, ctx.SetEvent("Released", []byte(`{"amount":1}`)))

	events := ctx.Events()
	require.Len(t, events, 1)
	require.Equal(t, "Released", events[0].Name)
	require.JSONEq(t, `{"amount":1}`, string(events[0].Payload))
}
