package tickmath

import (
	"math/big"
	"testing"
)

func TestPriceToTickAlignment(t *testing.T) {
	cases := []struct {
		name    string
		price   float64
		spacing int32
		want    int32
	}{
		{"low bound scenario", 0.9, 200, -1000},
		{"high bound scenario", 1.1, 200, 1000},
		{"unit price", 1.0, 200, 0},
		{"unit price tight spacing", 1.0, 1, 0},
		{"default spacing", 2.0, 60, 6960},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PriceToTick(tc.price, tc.spacing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("PriceToTick(%v, %d) = %d, want %d", tc.price, tc.spacing, got, tc.want)
			}
			if got%tc.spacing != 0 {
				t.Fatalf("tick %d not aligned to spacing %d", got, tc.spacing)
			}
		})
	}
}

func TestPriceToTickInvalid(t *testing.T) {
	if _, err := PriceToTick(0, 200); err == nil {
		t.Fatal("expected error for zero price")
	}
	if _, err := PriceToTick(-1, 200); err == nil {
		t.Fatal("expected error for negative price")
	}
	if _, err := PriceToTick(1.5, 0); err == nil {
		t.Fatal("expected error for zero spacing")
	}
}

func TestRoundTrip(t *testing.T) {
	spacings := []int32{1, 10, 60, 200}
	ticks := []int32{-60000, -6000, -200, 0, 200, 6000, 60000}

	for _, spacing := range spacings {
		for _, tick := range ticks {
			if tick%spacing != 0 {
				continue
			}
			price := TickToPrice(tick)
			got, err := PriceToTick(price, spacing)
			if err != nil {
				t.Fatalf("unexpected error at tick %d: %v", tick, err)
			}
			if got != tick {
				t.Fatalf("round trip tick %d spacing %d = %d", tick, spacing, got)
			}
		}
	}
}

func TestTickToPriceMonotonic(t *testing.T) {
	prev := TickToPrice(-10000)
	for tick := int32(-9990); tick <= 10000; tick += 10 {
		price := TickToPrice(tick)
		if price <= prev {
			t.Fatalf("price not increasing at tick %d: %v <= %v", tick, price, prev)
		}
		prev = price
	}
}

func TestGetSqrtRatioAtTickKnownValues(t *testing.T) {
	cases := []struct {
		tick int32
		want string
	}{
		{0, "79228162514264337593543950336"}, // 2^96
		{MinTick, "4295128739"},
		{MaxTick, "1461446703485210103287273052203988822378723970342"},
	}

	for _, tc := range cases {
		got, err := GetSqrtRatioAtTick(tc.tick)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tc.tick, err)
		}
		want, _ := new(big.Int).SetString(tc.want, 10)
		if got.Cmp(want) != 0 {
			t.Fatalf("tick %d: got %s, want %s", tc.tick, got, want)
		}
	}
}

func TestGetSqrtRatioAtTickMonotonic(t *testing.T) {
	prev, err := GetSqrtRatioAtTick(-1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for tick := int32(-990); tick <= 1000; tick += 10 {
		ratio, err := GetSqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tick, err)
		}
		if ratio.Cmp(prev) <= 0 {
			t.Fatalf("sqrt ratio not increasing at tick %d", tick)
		}
		prev = ratio
	}
}

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	if _, err := GetSqrtRatioAtTick(MaxTick + 1); err == nil {
		t.Fatal("expected error above max tick")
	}
	if _, err := GetSqrtRatioAtTick(MinTick - 1); err == nil {
		t.Fatal("expected error below min tick")
	}
}
