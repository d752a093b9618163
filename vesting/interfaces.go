package vesting

// TransactionContextInterface is the per-call handle the host hands to every
// engine entry point. It bundles the keyed byte store, event emission, the
// caller identity and the current tick. The host guarantees all-or-nothing
// visibility: when a call returns an error, none of its PutState writes
// persist.
type TransactionContextInterface interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	SetEvent(name string, payload []byte) error
	GetUserID() (string, error)
	GetTxTick() uint64
}

// Ledger is the external token ledger. Transfer failures abort the enclosing
// engine call.
type Ledger interface {
	GetTotalSupply(ctx TransactionContextInterface) (uint64, error)
	Transfer(ctx TransactionContextInterface, amount uint64, from, to, memo string) error
}

// AccessControl answers the administrator capability check consulted before
// every state-mutating entry point.
type AccessControl interface {
	IsAdministrator(ctx TransactionContextInterface, caller string) (bool, error)
}

// AdminList is a fixed administrator set.
type AdminList struct {
	admins map[string]bool
}

func NewAdminList(ids ...string) *AdminList {
	admins := make(map[string]bool, len(ids))
	for _, id := range ids {
		admins[id] = true
	}
	return &AdminList{admins: admins}
}

func (a *AdminList) IsAdministrator(_ TransactionContextInterface, caller string) (bool, error) {
	return a.admins[caller], nil
}
