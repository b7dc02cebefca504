package order

import (
	"errors"
	"testing"
)

func TestToUnits(t *testing.T) {
	cases := []struct {
		amount   float64
		decimals int
		want     uint64
	}{
		{300.0, 6, 300000000},
		{3.0, 6, 3000000},
		{3500.0, 10, 35000000000000},
		{0.0, 6, 0},
		{1.5, 0, 1},
		{0.000001, 6, 1},
		{0.0000001, 6, 0}, // sub-unit amounts truncate to zero
		{50000.0, 8, 5000000000000},
	}
	for _, tc := range cases {
		got, err := ToUnits(tc.amount, tc.decimals)
		if err != nil {
			t.Fatalf("ToUnits(%v, %d): unexpected error: %v", tc.amount, tc.decimals, err)
		}
		if got != tc.want {
			t.Fatalf("ToUnits(%v, %d): expected %d, got %d", tc.amount, tc.decimals, tc.want, got)
		}
	}
}

func TestToUnitsRejectsNegativeAmount(t *testing.T) {
	if _, err := ToUnits(-1.0, 6); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestToUnitsRejectsNegativeDecimals(t *testing.T) {
	if _, err := ToUnits(1.0, -1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestToUnitsRejectsOverflow(t *testing.T) {
	if _, err := ToUnits(1e30, 10); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
