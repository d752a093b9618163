// Package ledger provides a token ledger kept in the same keyed store the
// vesting engine writes to, so a release's bookkeeping and its payout commit
// in one host transaction.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

const (
	totalSupplyKey   = "token_total_supply"
	balanceKeyPrefix = "token_balance_"
)

var (
	ErrNotBootstrapped     = errors.New("ledger is not bootstrapped")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// StateLedger implements vesting.Ledger on top of the transaction context's
// store. It is stateless itself; balances live under token_balance_ keys as
// decimal strings.
type StateLedger struct {
	log *slog.Logger
}

func NewStateLedger(log *slog.Logger) *StateLedger {
	if log == nil {
		log = slog.Default()
	}
	return &StateLedger{log: log}
}

func balanceKey(account string) string {
	return balanceKeyPrefix + account
}

// Bootstrap mints the total supply onto the custody account. Re-running with
// the same supply is a no-op so hosts can call it unconditionally at startup;
// a different supply is rejected.
func (l *StateLedger) Bootstrap(ctx vesting.TransactionContextInterface, totalSupply uint64, custody string) error {
	if totalSupply == 0 {
		return errors.New("total supply cannot be zero")
	}
	if custody == "" {
		return errors.New("custody account cannot be empty")
	}

	existing, err := ctx.GetState(totalSupplyKey)
	if err != nil {
		return fmt.Errorf("failed to get total supply: %w", err)
	}
	if existing != nil {
		current, err := parseAmount(existing)
		if err != nil {
			return err
		}
		if current != totalSupply {
			return fmt.Errorf("ledger already bootstrapped with supply %d", current)
		}
		return nil
	}

	if err := ctx.PutState(totalSupplyKey, formatAmount(totalSupply)); err != nil {
		return fmt.Errorf("failed to set total supply: %w", err)
	}
	if err := ctx.PutState(balanceKey(custody), formatAmount(totalSupply)); err != nil {
		return fmt.Errorf("failed to credit custody account: %w", err)
	}

	l.log.Info("ledger bootstrapped", "totalSupply", totalSupply, "custody", custody)

	return nil
}

func (l *StateLedger) GetTotalSupply(ctx vesting.TransactionContextInterface) (uint64, error) {
	supplyAsBytes, err := ctx.GetState(totalSupplyKey)
	if err != nil {
		return 0, fmt.Errorf("failed to get total supply: %w", err)
	}
	if supplyAsBytes == nil {
		return 0, ErrNotBootstrapped
	}
	return parseAmount(supplyAsBytes)
}

// Transfer debits from and credits to atomically within the enclosing host
// transaction. Zero amounts and unknown source accounts are rejected.
func (l *StateLedger) Transfer(ctx vesting.TransactionContextInterface, amount uint64, from, to, memo string) error {
	if amount == 0 {
		return errors.New("transfer amount cannot be zero")
	}
	if from == "" || to == "" {
		return errors.New("transfer accounts cannot be empty")
	}
	if from == to {
		return errors.New("transfer source and destination are the same")
	}

	fromBalance, err := l.BalanceOf(ctx, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, fromBalance, amount)
	}

	toBalance, err := l.BalanceOf(ctx, to)
	if err != nil {
		return err
	}

	if err := ctx.PutState(balanceKey(from), formatAmount(fromBalance-amount)); err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}
	if err := ctx.PutState(balanceKey(to), formatAmount(toBalance+amount)); err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}

	l.log.Debug("transfer", "amount", amount, "from", from, "to", to, "memo", memo)

	return nil
}

// BalanceOf returns zero for accounts that were never credited.
func (l *StateLedger) BalanceOf(ctx vesting.TransactionContextInterface, account string) (uint64, error) {
	balanceAsBytes, err := ctx.GetState(balanceKey(account))
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", account, err)
	}
	if balanceAsBytes == nil {
		return 0, nil
	}
	return parseAmount(balanceAsBytes)
}

func formatAmount(amount uint64) []byte {
	return []byte(strconv.FormatUint(amount, 10))
}

func parseAmount(raw []byte) (uint64, error) {
	amount, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse stored amount %q: %w", raw, err)
	}
	return amount, nil
}
