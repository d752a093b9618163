package badgerstore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anya-org/Anya-core-sub010/store/badgerstore"
	"github.com/Anya-org/Anya-core-sub010/vesting"
)

func openStore(t *testing.T) *badgerstore.Store {
	t.Helper()

	store, err := badgerstore.Open(badgerstore.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	return store
}

func TestOpenRequiresPathForPersistentDatabase(t *testing.T) {
	_, err := badgerstore.Open(badgerstore.Config{})
	require.Error(t, err)
}

func TestRunTxCommitsOnSuccess(t *testing.T) {
	store := openStore(t)

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
	store := openStore(t)

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

func TestGetStateMissingKeyReturnsNil(t *testing.T) {
	store := openStore(t)

	err := store.RunView("", 0, func(ctx vesting.TransactionContextInterface) error {
		value, err := ctx.GetState("missing")
		require.NoError(t, err)
		require.Nil(t, value)
		return nil
	})
	require.NoError(t, err)
}

func TestTxContextCallerAndTick(t *testing.T) {
	store := openStore(t)

	err := store.RunView("alice", 7, func(ctx vesting.TransactionContextInterface) error {
		caller, err := ctx.GetUserID()
		require.NoError(t, err)
		require.Equal(t, "alice", caller)
		require.Equal(t, uint64(7), ctx.GetTxTick())
		return nil
	})
	require.NoError(t, err)
}
