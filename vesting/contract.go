package vesting

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Engine is the vesting engine facade. All collaborators are injected; the
// engine itself holds no mutable state, every record lives behind the
// per-call transaction context.
type Engine struct {
	ledger Ledger
	acl    AccessControl
	cfg    Config
	log    *slog.Logger
}

// Config carries host-level knobs. Zero values fall back to the defaults in
// constants.go.
type Config struct {
	TicksPerMonth  uint64
	CustodyAccount string
}

func NewEngine(ledger Ledger, acl AccessControl, cfg Config, log *slog.Logger) (*Engine, error) {
	if ledger == nil {
		return nil, NewCustomError(http.StatusInternalServerError, "ledger is required", ErrInvalidParameter)
	}
	if acl == nil {
		return nil, NewCustomError(http.StatusInternalServerError, "access control is required", ErrInvalidParameter)
	}
	if cfg.TicksPerMonth == 0 {
		cfg.TicksPerMonth = DefaultTicksPerMonth
	}
	if cfg.CustodyAccount == "" {
		cfg.CustodyAccount = CustodyAccount
	}
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		ledger: ledger,
		acl:    acl,
		cfg:    cfg,
		log:    log,
	}, nil
}

// ReleaseResult reports one process call. Released is false for the
// idempotent no-op case.
type ReleaseResult struct {
	ID       string `json:"id"`
	Amount   uint64 `json:"amount"`
	Released bool   `json:"released"`
	Tick     uint64 `json:"tick"`
}

// VestedInfo is the read-only vesting progress view of one allocation.
type VestedInfo struct {
	AllocationID     string `json:"allocationId"`
	TotalAllocation  uint64 `json:"totalAllocation"`
	VestedAmount     uint64 `json:"vestedAmount"`
	ReleasedAmount   uint64 `json:"releasedAmount"`
	UnreleasedAmount uint64 `json:"unreleasedAmount"`
	ProgressPercent  uint64 `json:"progressPercent"`
}

type AllocationSummary struct {
	AllocationID     string `json:"allocationId"`
	VestingType      string `json:"vestingType"`
	TotalAllocation  uint64 `json:"totalAllocation"`
	VestedAmount     uint64 `json:"vestedAmount"`
	ReleasedAmount   uint64 `json:"releasedAmount"`
	UnreleasedAmount uint64 `json:"unreleasedAmount"`
	ProgressPercent  uint64 `json:"progressPercent"`
}

type Summary struct {
	Initialized     bool                `json:"initialized"`
	LaunchTick      uint64              `json:"launchTick"`
	CurrentTick     uint64              `json:"currentTick"`
	MonthsElapsed   uint64              `json:"monthsElapsed"`
	TotalSupply     uint64              `json:"totalSupply"`
	TotalAllocated  uint64              `json:"totalAllocated"`
	TotalVested     uint64              `json:"totalVested"`
	TotalReleased   uint64              `json:"totalReleased"`
	TotalUnreleased uint64              `json:"totalUnreleased"`
	Allocations     []AllocationSummary `json:"allocations"`
}

// Initialize is the one-shot launch of the distribution: it splits the
// ledger's total supply 35/25/20/15/5 across the five buckets and seeds each
// schedule. Floor division may leave a remainder; it stays on the custody
// account and is never assigned to a bucket.
func (e *Engine) Initialize(ctx TransactionContextInterface) error {
	if _, err := e.requireAdministrator(ctx); err != nil {
		return err
	}

	launch, err := GetLaunchState(ctx)
	if err != nil {
		return err
	}
	if launch != nil {
		return NewCustomError(http.StatusConflict, "vesting engine is already initialized", ErrAlreadyInitialized)
	}

	totalSupply, err := e.ledger.GetTotalSupply(ctx)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to query total supply", err)
	}
	if totalSupply == 0 {
		return NewCustomError(http.StatusBadRequest, "total supply cannot be zero", ErrInvalidParameter)
	}

	now := ctx.GetTxTick()

	seeds := []struct {
		id                AllocationID
		vestingType       VestingType
		percentage        uint64
		initialPercentage uint64
		cliffMonths       uint64
		vestingMonths     uint64
	}{
		{Treasury, Linear, TreasuryPercentage, 20, 0, 48},
		{Liquidity, Linear, LiquidityPercentage, 50, 0, 18},
		{Team, Cliff, TeamPercentage, 0, 12, 36},
		{Community, Linear, CommunityPercentage, 10, 0, 48},
		{Partners, Linear, PartnersPercentage, 10, 0, 36},
	}

	var allocated uint64
	for _, seed := range seeds {
		record, err := seedAllocation(ctx, seed.id, seed.vestingType,
			percentageOf(totalSupply, seed.percentage),
			seed.initialPercentage, seed.cliffMonths, seed.vestingMonths, now)
		if err != nil {
			return err
		}
		allocated += record.TotalAllocation

		// The immediate unlock leaves custody at launch; ReleasedAmount
		// already accounts for it, so later process calls pay only accrual.
		if record.ReleasedAmount > 0 {
			memo := fmt.Sprintf("initial unlock %s at tick %d", seed.id, now)
			if err := e.ledger.Transfer(ctx, record.ReleasedAmount, e.cfg.CustodyAccount, destinationAccount(seed.id.String()), memo); err != nil {
				return NewCustomError(http.StatusBadGateway, fmt.Sprintf("ledger rejected initial unlock for %s", seed.id), fmt.Errorf("%w: %w", ErrTransferFailed, err))
			}
		}
	}

	if allocated > totalSupply {
		return NewCustomError(http.StatusInternalServerError, "allocations exceed total supply", ErrInvalidParameter)
	}

	if err := SetLaunchState(ctx, &LaunchState{
		LaunchTick:    now,
		TotalSupply:   totalSupply,
		TicksPerMonth: e.cfg.TicksPerMonth,
	}); err != nil {
		return err
	}

	initializeTotal.Inc()
	e.log.Info("vesting engine initialized",
		"launchTick", now,
		"totalSupply", totalSupply,
		"allocated", allocated,
	)

	return nil
}

// ProcessAllocation releases everything vested-but-unreleased for one
// allocation. The record mutation happens before the ledger transfer; a
// transfer failure aborts the call and the host discards the staged write, so
// bookkeeping and payout commit or fail as one unit. Calling again without a
// tick advance is a no-op, not an error.
func (e *Engine) ProcessAllocation(ctx TransactionContextInterface, id string) (*ReleaseResult, error) {
	if _, err := e.requireAdministrator(ctx); err != nil {
		return nil, err
	}

	launch, err := requireLaunched(ctx)
	if err != nil {
		return nil, err
	}

	if !isValidAllocationID(id) {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("unknown allocation %q", id), ErrNotFound)
	}

	record, err := GetAllocationRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	now := ctx.GetTxTick()
	totalVested, err := VestedAmount(record, now, launch.LaunchTick, launch.TicksPerMonth)
	if err != nil {
		return nil, err
	}

	if totalVested < record.ReleasedAmount {
		return nil, NewCustomError(http.StatusInternalServerError,
			fmt.Sprintf("vested amount %d below released amount %d for %s", totalVested, record.ReleasedAmount, id),
			ErrInvalidParameter)
	}

	toRelease := totalVested - record.ReleasedAmount
	if toRelease == 0 {
		recordRelease(id, 0)
		return &ReleaseResult{ID: id, Amount: 0, Released: false, Tick: now}, nil
	}

	record.ReleasedAmount = totalVested
	record.LastReleaseTick = now
	if err := SetAllocationRecord(ctx, id, record); err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("vesting release %s at tick %d", id, now)
	if err := e.ledger.Transfer(ctx, toRelease, e.cfg.CustodyAccount, destinationAccount(id), memo); err != nil {
		return nil, NewCustomError(http.StatusBadGateway, fmt.Sprintf("ledger rejected release for %s", id), fmt.Errorf("%w: %w", ErrTransferFailed, err))
	}

	if err := EmitTokensReleased(ctx, id, "allocation", toRelease, record.ReleasedAmount, now); err != nil {
		return nil, err
	}

	recordRelease(id, toRelease)
	e.log.Info("allocation released", "allocation", id, "amount", toRelease, "tick", now)

	return &ReleaseResult{ID: id, Amount: toRelease, Released: true, Tick: now}, nil
}

// ProcessAll runs ProcessAllocation over the five buckets in fixed order. A
// failure aborts the batch; callers wanting partial tolerance process
// individually.
func (e *Engine) ProcessAll(ctx TransactionContextInterface) ([]*ReleaseResult, error) {
	results := make([]*ReleaseResult, 0, len(AllocationOrder))
	for _, id := range AllocationOrder {
		result, err := e.ProcessAllocation(ctx, id.String())
		if err != nil {
			return nil, fmt.Errorf("failed to process allocation %s: %w", id, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// GetAllocation returns the raw allocation record.
func (e *Engine) GetAllocation(ctx TransactionContextInterface, id string) (*AllocationRecord, error) {
	if !isValidAllocationID(id) {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("unknown allocation %q", id), ErrNotFound)
	}
	return GetAllocationRecord(ctx, id)
}

// CalculateVested reports vesting progress for one allocation without
// mutating anything.
func (e *Engine) CalculateVested(ctx TransactionContextInterface, id string) (*VestedInfo, error) {
	launch, err := requireLaunched(ctx)
	if err != nil {
		return nil, err
	}

	if !isValidAllocationID(id) {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("unknown allocation %q", id), ErrNotFound)
	}

	record, err := GetAllocationRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	totalVested, err := VestedAmount(record, ctx.GetTxTick(), launch.LaunchTick, launch.TicksPerMonth)
	if err != nil {
		return nil, err
	}

	return &VestedInfo{
		AllocationID:     id,
		TotalAllocation:  record.TotalAllocation,
		VestedAmount:     totalVested,
		ReleasedAmount:   record.ReleasedAmount,
		UnreleasedAmount: totalVested - record.ReleasedAmount,
		ProgressPercent:  progressPercent(totalVested, record.TotalAllocation),
	}, nil
}

// GetSummary aggregates every bucket. Before initialization it returns an
// empty summary with Initialized false rather than an error.
func (e *Engine) GetSummary(ctx TransactionContextInterface) (*Summary, error) {
	launch, err := GetLaunchState(ctx)
	if err != nil {
		return nil, err
	}
	if launch == nil {
		return &Summary{Initialized: false}, nil
	}

	now := ctx.GetTxTick()
	summary := &Summary{
		Initialized:   true,
		LaunchTick:    launch.LaunchTick,
		CurrentTick:   now,
		MonthsElapsed: monthsBetween(launch.LaunchTick, now, launch.TicksPerMonth),
		TotalSupply:   launch.TotalSupply,
		Allocations:   make([]AllocationSummary, 0, len(AllocationOrder)),
	}

	for _, id := range AllocationOrder {
		record, err := GetAllocationRecord(ctx, id.String())
		if err != nil {
			return nil, err
		}

		totalVested, err := VestedAmount(record, now, launch.LaunchTick, launch.TicksPerMonth)
		if err != nil {
			return nil, err
		}

		summary.TotalAllocated += record.TotalAllocation
		summary.TotalVested += totalVested
		summary.TotalReleased += record.ReleasedAmount
		summary.TotalUnreleased += totalVested - record.ReleasedAmount
		summary.Allocations = append(summary.Allocations, AllocationSummary{
			AllocationID:     id.String(),
			VestingType:      record.VestingType.String(),
			TotalAllocation:  record.TotalAllocation,
			VestedAmount:     totalVested,
			ReleasedAmount:   record.ReleasedAmount,
			UnreleasedAmount: totalVested - record.ReleasedAmount,
			ProgressPercent:  progressPercent(totalVested, record.TotalAllocation),
		})
	}

	return summary, nil
}

func progressPercent(vested, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	return mulDiv(vested, 100, total)
}

func destinationAccount(id string) string {
	return id
}
