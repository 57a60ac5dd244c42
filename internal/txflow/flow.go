package txflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"liquidityDesk/internal/engine"
)

// State is the flow's position in the approve -> commit sequence.
type State int

const (
	StateIdle State = iota
	StateAwaitingApproval
	StateSubmitting
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingApproval:
		return "awaiting_approval"
	case StateSubmitting:
		return "submitting"
	case StateConfirming:
		return "confirming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrFlowBusy is returned when a second intent is run while the flow
	// is not idle. One intent may be in flight per flow at a time.
	ErrFlowBusy = errors.New("a transaction is already in flight")
	// ErrReverted is returned when a mined receipt carries a failed status.
	ErrReverted = errors.New("transaction reverted")
	// ErrConfirmTimeout is returned when a submitted transaction is not
	// mined within the configured confirmation window.
	ErrConfirmTimeout = errors.New("timed out waiting for confirmation")
)

// MarketWriter submits state-changing market calls and returns the
// transaction hash on acceptance by the node.
type MarketWriter interface {
	CreateLiquidityPosition(ctx context.Context, params CreateParams, deadline *big.Int) (common.Hash, error)
	IncreaseLiquidityPosition(ctx context.Context, params IncreaseParams, deadline *big.Int) (common.Hash, error)
	DecreaseLiquidityPosition(ctx context.Context, params DecreaseParams, deadline *big.Int) (common.Hash, error)
	// CreatedPositionID extracts the position id emitted by a create
	// receipt's logs, if present.
	CreatedPositionID(receipt *types.Receipt) (*big.Int, bool)
}

// CollateralToken is the ERC-20 surface the flow needs for approvals.
type CollateralToken interface {
	Allowance(ctx context.Context) (*big.Int, error)
	Approve(ctx context.Context, amount *big.Int) (common.Hash, error)
}

// ReceiptWaiter blocks until a transaction is mined or the context ends.
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Config holds flow timing settings.
type Config struct {
	// DeadlineWindow bounds how long a pending transaction remains valid
	// on chain. Computed immediately before each submission.
	DeadlineWindow time.Duration
	// ConfirmTimeout bounds the wait for a mined receipt. Zero disables
	// the timeout and waits until the context is cancelled.
	ConfirmTimeout time.Duration
}

// DefaultConfig uses a 30 minute deadline and a 10 minute confirm timeout.
func DefaultConfig() Config {
	return Config{
		DeadlineWindow: 30 * time.Minute,
		ConfirmTimeout: 10 * time.Minute,
	}
}

// Result is the outcome of a completed flow.
type Result struct {
	TxHash     common.Hash
	Receipt    *types.Receipt
	PositionID *big.Int // set when a create receipt emitted one
}

// Flow sequences approve -> commit for a single transaction intent and
// resets to idle on success or failure. It holds the only mutable shared
// state in the engine; single-flight is enforced here with ErrFlowBusy in
// addition to the caller disabling resubmission.
type Flow struct {
	market MarketWriter
	token  CollateralToken
	waiter ReceiptWaiter
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
}

func New(market MarketWriter, token CollateralToken, waiter ReceiptWaiter, cfg Config, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DeadlineWindow <= 0 {
		cfg.DeadlineWindow = 30 * time.Minute
	}
	return &Flow{
		market: market,
		token:  token,
		waiter: waiter,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// State returns the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(next State) {
	f.mu.Lock()
	prev := f.state
	f.state = next
	f.mu.Unlock()
	f.logger.Debug("flow state", zap.Stringer("from", prev), zap.Stringer("to", next))
}

// Run executes one intent: an approval step when the collateral delta
// exceeds the freshly read allowance, then the market call, then the
// receipt wait. The flow returns to idle whether it succeeds or fails.
func (f *Flow) Run(ctx context.Context, intent Intent) (Result, error) {
	if err := intent.validate(); err != nil {
		return Result{}, err
	}

	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return Result{}, ErrFlowBusy
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	defer f.setState(StateIdle)

	if err := f.approveIfNeeded(ctx, intent); err != nil {
		return Result{}, err
	}

	f.setState(StateSubmitting)
	txHash, err := f.submit(ctx, intent)
	if err != nil {
		return Result{}, fmt.Errorf("%s liquidity position: %w", intent.Kind, err)
	}
	f.logger.Info("transaction submitted",
		zap.Stringer("intent", intent.Kind),
		zap.String("tx_hash", txHash.Hex()),
	)

	f.setState(StateConfirming)
	receipt, err := f.waitConfirmed(ctx, txHash)
	if err != nil {
		return Result{TxHash: txHash}, fmt.Errorf("confirm %s: %w", intent.Kind, err)
	}

	result := Result{TxHash: txHash, Receipt: receipt}
	if intent.Kind == IntentCreate {
		if id, ok := f.market.CreatedPositionID(receipt); ok {
			result.PositionID = id
			f.logger.Info("liquidity position created", zap.String("position_id", id.String()))
		}
	}

	f.logger.Info("transaction confirmed",
		zap.Stringer("intent", intent.Kind),
		zap.String("tx_hash", txHash.Hex()),
		zap.Uint64("block_number", receipt.BlockNumber.Uint64()),
	)
	return result, nil
}

// approveIfNeeded re-reads the allowance immediately before deciding; a
// previously fetched value may have been consumed by an unrelated
// transaction. The dependent call is held until the approval receipt is
// mined, not merely submitted.
func (f *Flow) approveIfNeeded(ctx context.Context, intent Intent) error {
	delta := intent.CollateralDelta
	if delta == nil || delta.Sign() <= 0 {
		return nil
	}

	allowance, err := f.token.Allowance(ctx)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if !engine.RequiresApproval(delta, allowance) {
		return nil
	}

	f.setState(StateAwaitingApproval)
	txHash, err := f.token.Approve(ctx, delta)
	if err != nil {
		return fmt.Errorf("approve collateral: %w", err)
	}
	f.logger.Info("approval submitted",
		zap.String("tx_hash", txHash.Hex()),
		zap.String("amount", delta.String()),
	)

	if _, err := f.waitConfirmed(ctx, txHash); err != nil {
		return fmt.Errorf("confirm approval: %w", err)
	}
	return nil
}

func (f *Flow) submit(ctx context.Context, intent Intent) (common.Hash, error) {
	deadline := f.deadline()
	switch intent.Kind {
	case IntentCreate:
		return f.market.CreateLiquidityPosition(ctx, *intent.Create, deadline)
	case IntentIncrease:
		return f.market.IncreaseLiquidityPosition(ctx, *intent.Increase, deadline)
	case IntentDecrease:
		return f.market.DecreaseLiquidityPosition(ctx, *intent.Decrease, deadline)
	default:
		return common.Hash{}, fmt.Errorf("unknown intent kind %d", int(intent.Kind))
	}
}

// deadline is computed immediately before submission, never cached.
func (f *Flow) deadline() *big.Int {
	return big.NewInt(f.now().Add(f.cfg.DeadlineWindow).Unix())
}

func (f *Flow) waitConfirmed(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	waitCtx := ctx
	if f.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, f.cfg.ConfirmTimeout)
		defer cancel()
	}

	receipt, err := f.waiter.WaitMined(waitCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", ErrConfirmTimeout, txHash.Hex())
		}
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrReverted, txHash.Hex())
	}
	return receipt, nil
}
