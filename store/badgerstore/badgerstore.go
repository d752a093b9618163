// Package badgerstore backs the vesting state with embedded BadgerDB. One
// engine call runs inside one badger transaction, so an error return discards
// every staged write.
package badgerstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

// Config mirrors the knobs we actually use.
type Config struct {
	// Path is the database directory; ignored when InMemory is set.
	Path string

	// InMemory disables disk persistence, for tests and dev hosts.
	InMemory bool

	// SyncWrites trades throughput for durability.
	SyncWrites bool

	// Logger receives badger's internal logging; nil disables it.
	Logger *slog.Logger
}

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// badgerLogger adapts slog to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	log := cfg.Logger
	if log != nil {
		opts = opts.WithLogger(&badgerLogger{logger: log})
	} else {
		log = slog.Default()
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type txContext struct {
	txn    *badger.Txn
	caller string
	tick   uint64
	log    *slog.Logger
}

func (t *txContext) GetState(key string) ([]byte, error) {
	item, err := t.txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func (t *txContext) PutState(key string, value []byte) error {
	return t.txn.Set([]byte(key), value)
}

// SetEvent surfaces events on the log; this host has no event bus.
func (t *txContext) SetEvent(name string, payload []byte) error {
	t.log.Info("event", "name", name, "payload", string(payload))
	return nil
}

func (t *txContext) GetUserID() (string, error) {
	return t.caller, nil
}

func (t *txContext) GetTxTick() uint64 {
	return t.tick
}

// RunTx executes fn inside one read-write badger transaction.
func (s *Store) RunTx(caller string, tick uint64, fn func(vesting.TransactionContextInterface) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&txContext{txn: txn, caller: caller, tick: tick, log: s.log})
	})
}

// RunView executes fn inside a read-only transaction; PutState fails.
func (s *Store) RunView(caller string, tick uint64, fn func(vesting.TransactionContextInterface) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&txContext{txn: txn, caller: caller, tick: tick, log: s.log})
	})
}
