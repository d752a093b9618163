// Package memory is a map-backed state store with buffered per-call
// transaction contexts. Writes become visible only on Commit, giving the
// engine the all-or-nothing call semantics its context contract requires.
package memory

import (
	"sync"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

type Store struct {
	mu    sync.RWMutex
	runMu sync.Mutex
	state map[string][]byte
}

func New() *Store {
	return &Store{state: make(map[string][]byte)}
}

// Event is a captured SetEvent call.
type Event struct {
	Name    string
	Payload []byte
}

// TxContext buffers one call's writes and events.
type TxContext struct {
	store  *Store
	caller string
	tick   uint64
	writes map[string][]byte
	events []Event
}

func (s *Store) NewTxContext(caller string, tick uint64) *TxContext {
	return &TxContext{
		store:  s,
		caller: caller,
		tick:   tick,
		writes: make(map[string][]byte),
	}
}

func (t *TxContext) GetState(key string) ([]byte, error) {
	if value, ok := t.writes[key]; ok {
		return cloneBytes(value), nil
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	value, ok := t.store.state[key]
	if !ok {
		return nil, nil
	}
	return cloneBytes(value), nil
}

func (t *TxContext) PutState(key string, value []byte) error {
	t.writes[key] = cloneBytes(value)
	return nil
}

func (t *TxContext) SetEvent(name string, payload []byte) error {
	t.events = append(t.events, Event{Name: name, Payload: cloneBytes(payload)})
	return nil
}

func (t *TxContext) GetUserID() (string, error) {
	return t.caller, nil
}

func (t *TxContext) GetTxTick() uint64 {
	return t.tick
}

// Commit publishes the buffered writes.
func (t *TxContext) Commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for key, value := range t.writes {
		t.store.state[key] = value
	}
	t.writes = make(map[string][]byte)
}

// Events returns the events captured so far.
func (t *TxContext) Events() []Event {
	return t.events
}

// RunTx executes fn with a fresh context and commits on success. Calls are
// serialized, matching the one-call-at-a-time execution model.
func (s *Store) RunTx(caller string, tick uint64, fn func(vesting.TransactionContextInterface) error) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx := s.NewTxContext(caller, tick)
	if err := fn(ctx); err != nil {
		return err
	}
	ctx.Commit()
	return nil
}

// RunView executes fn read-only: writes are buffered and discarded.
func (s *Store) RunView(caller string, tick uint64, fn func(vesting.TransactionContextInterface) error) error {
	return fn(s.NewTxContext(caller, tick))
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
