package txflow

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeMarket struct {
	mu           sync.Mutex
	calls        []string
	submitErr    error
	createdID    *big.Int
	lastDeadline *big.Int
}

func (m *fakeMarket) record(name string) common.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	return common.BytesToHash([]byte(name))
}

func (m *fakeMarket) CreateLiquidityPosition(_ context.Context, _ CreateParams, deadline *big.Int) (common.Hash, error) {
	m.lastDeadline = deadline
	if m.submitErr != nil {
		return common.Hash{}, m.submitErr
	}
	return m.record("create"), nil
}

func (m *fakeMarket) IncreaseLiquidityPosition(_ context.Context, _ IncreaseParams, deadline *big.Int) (common.Hash, error) {
	m.lastDeadline = deadline
	if m.submitErr != nil {
		return common.Hash{}, m.submitErr
	}
	return m.record("increase"), nil
}

func (m *fakeMarket) DecreaseLiquidityPosition(_ context.Context, _ DecreaseParams, deadline *big.Int) (common.Hash, error) {
	m.lastDeadline = deadline
	if m.submitErr != nil {
		return common.Hash{}, m.submitErr
	}
	return m.record("decrease"), nil
}

func (m *fakeMarket) CreatedPositionID(_ *types.Receipt) (*big.Int, bool) {
	if m.createdID == nil {
		return nil, false
	}
	return m.createdID, true
}

type fakeToken struct {
	mu         sync.Mutex
	calls      []string
	allowance  *big.Int
	approveErr error
}

func (t *fakeToken) Allowance(_ context.Context) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "allowance")
	return t.allowance, nil
}

func (t *fakeToken) Approve(_ context.Context, _ *big.Int) (common.Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "approve")
	if t.approveErr != nil {
		return common.Hash{}, t.approveErr
	}
	return common.BytesToHash([]byte("approve")), nil
}

type fakeWaiter struct {
	mu      sync.Mutex
	waited  []common.Hash
	// failStatus makes WaitMined return a receipt with
	// types.ReceiptStatusFailed; that constant is 0, so a plain status
	// field cannot distinguish "failed" from "unset".
	failStatus bool
	err        error
	blockFn    func(ctx context.Context) error
}

func (w *fakeWaiter) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if w.blockFn != nil {
		if err := w.blockFn(ctx); err != nil {
			return nil, err
		}
	}
	w.mu.Lock()
	w.waited = append(w.waited, txHash)
	w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	status := types.ReceiptStatusSuccessful
	if w.failStatus {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, BlockNumber: big.NewInt(100), TxHash: txHash}, nil
}

func newTestFlow(market *fakeMarket, token *fakeToken, waiter *fakeWaiter) *Flow {
	return New(market, token, waiter, DefaultConfig(), nil)
}

func createIntent(delta int64) Intent {
	return Intent{
		Kind: IntentCreate,
		Create: &CreateParams{
			EpochID:          big.NewInt(1),
			Amount0:          big.NewInt(995),
			Amount1:          big.NewInt(1990),
			CollateralAmount: big.NewInt(1000),
			TickLower:        -1000,
			TickUpper:        1000,
			MinAmount0:       big.NewInt(990),
			MinAmount1:       big.NewInt(1980),
		},
		CollateralDelta: big.NewInt(delta),
	}
}

func TestRunDirectSubmitWhenAllowanceCovers(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: big.NewInt(2000)}
	waiter := &fakeWaiter{}
	flow := newTestFlow(market, token, waiter)

	result, err := flow.Run(context.Background(), createIntent(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TxHash == (common.Hash{}) {
		t.Fatal("expected a transaction hash")
	}
	for _, call := range token.calls {
		if call == "approve" {
			t.Fatal("approve sent despite sufficient allowance")
		}
	}
	if flow.State() != StateIdle {
		t.Fatalf("flow not idle after success: %s", flow.State())
	}
}

func TestRunApprovalConfirmedBeforeSubmit(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: big.NewInt(10)}
	waiter := &fakeWaiter{}
	flow := newTestFlow(market, token, waiter)

	if _, err := flow.Run(context.Background(), createIntent(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The approval receipt must be observed before the market call.
	if len(waiter.waited) != 2 {
		t.Fatalf("waited on %d receipts, want 2", len(waiter.waited))
	}
	if waiter.waited[0] != common.BytesToHash([]byte("approve")) {
		t.Fatal("first confirmed receipt was not the approval")
	}
	if len(market.calls) != 1 || market.calls[0] != "create" {
		t.Fatalf("market calls = %v, want [create]", market.calls)
	}
}

func TestRunNoApprovalForDecrease(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: new(big.Int)}
	waiter := &fakeWaiter{}
	flow := newTestFlow(market, token, waiter)

	intent := Intent{
		Kind: IntentDecrease,
		Decrease: &DecreaseParams{
			PositionID: big.NewInt(7),
			Liquidity:  big.NewInt(1000000),
			MinAmount0: big.NewInt(990),
			MinAmount1: big.NewInt(1980),
		},
		CollateralDelta: big.NewInt(-500),
	}
	if _, err := flow.Run(context.Background(), intent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token.calls) != 0 {
		t.Fatalf("token touched on decrease: %v", token.calls)
	}
}

func TestRunRejectsSecondIntentWhileBusy(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: big.NewInt(2000)}
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	waiter := &fakeWaiter{blockFn: func(ctx context.Context) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
	flow := newTestFlow(market, token, waiter)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Run(context.Background(), createIntent(1000))
		done <- err
	}()

	<-started
	if _, err := flow.Run(context.Background(), createIntent(1000)); !errors.Is(err, ErrFlowBusy) {
		t.Fatalf("expected ErrFlowBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if flow.State() != StateIdle {
		t.Fatalf("flow not idle after completion: %s", flow.State())
	}
}

func TestRunSubmitErrorResetsToIdle(t *testing.T) {
	market := &fakeMarket{submitErr: errors.New("wallet rejected")}
	token := &fakeToken{allowance: big.NewInt(2000)}
	waiter := &fakeWaiter{}
	flow := newTestFlow(market, token, waiter)

	if _, err := flow.Run(context.Background(), createIntent(1000)); err == nil {
		t.Fatal("expected submit error")
	}
	if flow.State() != StateIdle {
		t.Fatalf("flow not idle after error: %s", flow.State())
	}

	// The flow is reusable immediately after an error.
	market.submitErr = nil
	if _, err := flow.Run(context.Background(), createIntent(1000)); err != nil {
		t.Fatalf("rerun after error failed: %v", err)
	}
}

func TestRunRevertedReceipt(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: big.NewInt(2000)}
	waiter := &fakeWaiter{failStatus: true}
	flow := newTestFlow(market, token, waiter)

	if _, err := flow.Run(context.Background(), createIntent(1000)); !errors.Is(err, ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
	if flow.State() != StateIdle {
		t.Fatalf("flow not idle after revert: %s", flow.State())
	}
}

func TestRunConfirmTimeout(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: big.NewInt(2000)}
	waiter := &fakeWaiter{blockFn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	flow := New(market, token, waiter, Config{
		DeadlineWindow: 30 * time.Minute,
		ConfirmTimeout: 10 * time.Millisecond,
	}, nil)

	if _, err := flow.Run(context.Background(), createIntent(1000)); !errors.Is(err, ErrConfirmTimeout) {
		t.Fatalf("expected ErrConfirmTimeout, got %v", err)
	}
	if flow.State() != StateIdle {
		t.Fatalf("flow not idle after timeout: %s", flow.State())
	}
}

func TestRunExtractsCreatedPositionID(t *testing.T) {
	market := &fakeMarket{createdID: big.NewInt(42)}
	token := &fakeToken{allowance: big.NewInt(2000)}
	waiter := &fakeWaiter{}
	flow := newTestFlow(market, token, waiter)

	result, err := flow.Run(context.Background(), createIntent(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PositionID == nil || result.PositionID.Int64() != 42 {
		t.Fatalf("position id = %v, want 42", result.PositionID)
	}
}

func TestRunDeadlineComputedAtSubmission(t *testing.T) {
	market := &fakeMarket{}
	token := &fakeToken{allowance: big.NewInt(2000)}
	waiter := &fakeWaiter{}
	flow := newTestFlow(market, token, waiter)

	before := time.Now().Add(30 * time.Minute).Unix()
	if _, err := flow.Run(context.Background(), createIntent(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().Add(30 * time.Minute).Unix()

	got := market.lastDeadline.Int64()
	if got < before || got > after {
		t.Fatalf("deadline %d outside [%d, %d]", got, before, after)
	}
}

func TestIntentValidate(t *testing.T) {
	if _, err := newTestFlow(&fakeMarket{}, &fakeToken{}, &fakeWaiter{}).Run(context.Background(), Intent{Kind: IntentCreate}); err == nil {
		t.Fatal("expected error for create intent without params")
	}
	if _, err := newTestFlow(&fakeMarket{}, &fakeToken{}, &fakeWaiter{}).Run(context.Background(), Intent{Kind: IntentKind(9)}); err == nil {
		t.Fatal("expected error for unknown intent kind")
	}
}
