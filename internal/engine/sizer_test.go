package engine

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"liquidityDesk/internal/model"
)

type fakeQuoter struct {
	calls        int
	quote        Quote
	err          error
	gotSqrtPrice *big.Int
	gotLower     *big.Int
	gotUpper     *big.Int
}

func (f *fakeQuoter) QuoteLiquidityPositionTokens(_ context.Context, _, _, sqrtPriceX96, sqrtLower, sqrtUpper *big.Int) (Quote, error) {
	f.calls++
	f.gotSqrtPrice = sqrtPriceX96
	f.gotLower = sqrtLower
	f.gotUpper = sqrtUpper
	return f.quote, f.err
}

func testSnapshot() model.MarketSnapshot {
	return model.MarketSnapshot{
		SqrtPriceX96:       new(big.Int).Lsh(big.NewInt(1), 96),
		TickSpacing:        200,
		CollateralDecimals: 18,
	}
}

func TestSizerQuote(t *testing.T) {
	quoter := &fakeQuoter{quote: Quote{Amount0: big.NewInt(500), Amount1: big.NewInt(700)}}
	sizer := NewSizer(quoter)
	rng := PriceRange{TickLower: -1000, TickUpper: 1000}

	quote, err := sizer.Quote(context.Background(), big.NewInt(1), big.NewInt(1000), testSnapshot(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Amount0.Int64() != 500 || quote.Amount1.Int64() != 700 {
		t.Fatalf("quote = %s/%s, want 500/700", quote.Amount0, quote.Amount1)
	}
	if quoter.calls != 1 {
		t.Fatalf("quoter called %d times, want 1", quoter.calls)
	}
	if quoter.gotLower.Cmp(quoter.gotUpper) >= 0 {
		t.Fatal("boundary sqrt ratios not ordered")
	}
}

func TestSizerQuoteZeroCollateral(t *testing.T) {
	sizer := NewSizer(&fakeQuoter{})
	rng := PriceRange{TickLower: -1000, TickUpper: 1000}

	if _, err := sizer.Quote(context.Background(), big.NewInt(1), new(big.Int), testSnapshot(), rng); !errors.Is(err, ErrZeroCollateral) {
		t.Fatalf("expected ErrZeroCollateral, got %v", err)
	}
}

func TestSizerQuoteError(t *testing.T) {
	quoteErr := errors.New("revert: range outside pool bounds")
	sizer := NewSizer(&fakeQuoter{err: quoteErr})
	rng := PriceRange{TickLower: -1000, TickUpper: 1000}

	if _, err := sizer.Quote(context.Background(), big.NewInt(1), big.NewInt(1000), testSnapshot(), rng); !errors.Is(err, quoteErr) {
		t.Fatalf("expected wrapped quote error, got %v", err)
	}
}

func TestSizerOpeningAmounts(t *testing.T) {
	sizer := NewSizer(&fakeQuoter{})
	reduced := sizer.OpeningAmounts(Quote{Amount0: big.NewInt(10000), Amount1: big.NewInt(20000)})
	if reduced.Amount0.Int64() != 9950 || reduced.Amount1.Int64() != 19900 {
		t.Fatalf("reduced = %s/%s, want 9950/19900", reduced.Amount0, reduced.Amount1)
	}
}

func TestSizerMinAmounts(t *testing.T) {
	sizer := NewSizer(&fakeQuoter{})
	min0, min1 := sizer.MinAmounts(Quote{Amount0: big.NewInt(1000), Amount1: big.NewInt(2000)}, DefaultSlippage)
	if min0.Int64() != 995 || min1.Int64() != 1990 {
		t.Fatalf("mins = %s/%s, want 995/1990", min0, min1)
	}
}
