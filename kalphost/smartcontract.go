// Package kalphost exposes the vesting engine as a Kalp chaincode. The kalp
// transaction context supplies the keyed world state, event emission and the
// x509 signer; the chaincode runtime supplies the all-or-nothing commit the
// engine's context contract requires. Ticks (block-denominated time) arrive
// as invocation arguments.
package kalphost

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"

	"github.com/Anya-org/Anya-core-sub010/ledger"
	"github.com/Anya-org/Anya-core-sub010/vesting"
)

// foundation is the administrator identity allowed to drive the engine.
const foundation = "0b87970433b22494faff1cc7a819e71bddc7880c"

type SmartContract struct {
	kalpsdk.Contract
	engine *vesting.Engine
	ledger *ledger.StateLedger
}

func NewSmartContract(contract kalpsdk.Contract) *SmartContract {
	log := slog.Default()
	stateLedger := ledger.NewStateLedger(log)
	engine, err := vesting.NewEngine(stateLedger, vesting.NewAdminList(foundation), vesting.Config{}, log)
	if err != nil {
		// NewEngine only fails on nil collaborators.
		panic(err)
	}

	return &SmartContract{
		Contract: contract,
		engine:   engine,
		ledger:   stateLedger,
	}
}

// txContext adapts the kalp transaction context onto the engine's contract.
type txContext struct {
	ctx  kalpsdk.TransactionContextInterface
	tick uint64
}

func (t *txContext) GetState(key string) ([]byte, error) {
	return t.ctx.GetState(key)
}

func (t *txContext) PutState(key string, value []byte) error {
	return t.ctx.PutStateWithoutKYC(key, value)
}

func (t *txContext) SetEvent(name string, payload []byte) error {
	return t.ctx.SetEvent(name, payload)
}

// GetUserID extracts the signer address from the x509 client identity.
func (t *txContext) GetUserID() (string, error) {
	b64ID, err := t.ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fmt.Errorf("failed to read clientID: %v", err)
	}

	decodeID, err := base64.StdEncoding.DecodeString(b64ID)
	if err != nil {
		return "", fmt.Errorf("failed to base64 decode clientID: %v", err)
	}

	completeID := string(decodeID)
	start := strings.Index(completeID, "x509::CN=")
	end := strings.Index(completeID, ",")
	if start < 0 || end < 0 || end <= start+9 {
		return "", fmt.Errorf("unexpected client identity format")
	}

	return completeID[start+9 : end], nil
}

func (t *txContext) GetTxTick() uint64 {
	return t.tick
}

func (s *SmartContract) adapt(ctx kalpsdk.TransactionContextInterface, currentTick uint64) *txContext {
	return &txContext{ctx: ctx, tick: currentTick}
}

// Initialize bootstraps the ledger with the default supply and runs the
// one-shot distribution launch at currentTick.
func (s *SmartContract) Initialize(ctx kalpsdk.TransactionContextInterface, currentTick uint64) error {
	if currentTick == 0 {
		return vesting.NewCustomError(http.StatusBadRequest, "current tick cannot be zero", vesting.ErrInvalidParameter)
	}

	tctx := s.adapt(ctx, currentTick)
	if err := s.ledger.Bootstrap(tctx, vesting.DefaultTotalSupply, vesting.CustodyAccount); err != nil {
		return vesting.NewCustomError(http.StatusInternalServerError, "failed to bootstrap ledger", err)
	}

	return s.engine.Initialize(tctx)
}

func (s *SmartContract) ProcessAllocation(ctx kalpsdk.TransactionContextInterface, allocationID string, currentTick uint64) (*vesting.ReleaseResult, error) {
	return s.engine.ProcessAllocation(s.adapt(ctx, currentTick), allocationID)
}

func (s *SmartContract) ProcessAll(ctx kalpsdk.TransactionContextInterface, currentTick uint64) ([]*vesting.ReleaseResult, error) {
	return s.engine.ProcessAll(s.adapt(ctx, currentTick))
}

func (s *SmartContract) RegisterMember(ctx kalpsdk.TransactionContextInterface, memberID string, percentage, currentTick uint64) error {
	return s.engine.RegisterMember(s.adapt(ctx, currentTick), memberID, percentage)
}

func (s *SmartContract) AddMilestone(ctx kalpsdk.TransactionContextInterface, memberID string, triggerMonth, percentage, currentTick uint64) error {
	return s.engine.AddMilestone(s.adapt(ctx, currentTick), memberID, triggerMonth, percentage)
}

func (s *SmartContract) ProcessMember(ctx kalpsdk.TransactionContextInterface, memberID string, currentTick uint64) (*vesting.ReleaseResult, error) {
	return s.engine.ProcessMember(s.adapt(ctx, currentTick), memberID)
}

func (s *SmartContract) GetAllocation(ctx kalpsdk.TransactionContextInterface, allocationID string) (*vesting.AllocationRecord, error) {
	return s.engine.GetAllocation(s.adapt(ctx, 0), allocationID)
}

func (s *SmartContract) GetMember(ctx kalpsdk.TransactionContextInterface, memberID string) (*vesting.MemberRecord, error) {
	return s.engine.GetMember(s.adapt(ctx, 0), memberID)
}

func (s *SmartContract) CalculateVested(ctx kalpsdk.TransactionContextInterface, allocationID string, currentTick uint64) (*vesting.VestedInfo, error) {
	return s.engine.CalculateVested(s.adapt(ctx, currentTick), allocationID)
}

func (s *SmartContract) GetSummary(ctx kalpsdk.TransactionContextInterface, currentTick uint64) (*vesting.Summary, error) {
	return s.engine.GetSummary(s.adapt(ctx, currentTick))
}
