package engine

import (
	"errors"
	"testing"
)

func TestAlignedRange(t *testing.T) {
	rng, err := AlignedRange(0.9, 1.1, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rng.TickLower != -1000 || rng.TickUpper != 1000 {
		t.Fatalf("range = [%d, %d], want [-1000, 1000]", rng.TickLower, rng.TickUpper)
	}
	if rng.TickLower%200 != 0 || rng.TickUpper%200 != 0 {
		t.Fatalf("ticks not aligned to spacing")
	}
}

func TestAlignedRangeInvalidPrice(t *testing.T) {
	if _, err := AlignedRange(0, 1.1, 200); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := AlignedRange(0.9, -1, 200); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestAlignedRangeCollapses(t *testing.T) {
	// Both prices snap to the same tick at wide spacing.
	if _, err := AlignedRange(1.0, 1.001, 200); !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("expected ErrInvertedRange, got %v", err)
	}
	if _, err := AlignedRange(1.1, 0.9, 200); !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("expected ErrInvertedRange, got %v", err)
	}
}

func TestSqrtBoundsOrdered(t *testing.T) {
	rng := PriceRange{TickLower: -1000, TickUpper: 1000}
	lower, upper, err := rng.SqrtBounds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lower.Cmp(upper) >= 0 {
		t.Fatalf("sqrt bounds not ordered: %s >= %s", lower, upper)
	}
}
