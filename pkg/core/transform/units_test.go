package transform

import (
	"math"
	"testing"
)

func TestToMillionsRawCurrency(t *testing.T) {
	got := ToMillions(8713700000)
	if math.Abs(got-8713.7) > 1e-9 {
		t.Errorf("expected 8713.7, got %v", got)
	}
}

func TestToMillionsAlreadyInMillions(t *testing.T) {
	got := ToMillions(8713.7)
	if got != 8713.7 {
		t.Errorf("expected 8713.7 unchanged, got %v", got)
	}
}

func TestToMillionsZero(t *testing.T) {
	if got := ToMillions(0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestToMillionsNegativePreservesSign(t *testing.T) {
	got := ToMillions(-2500000000)
	if math.Abs(got-(-2500)) > 1e-9 {
		t.Errorf("expected -2500, got %v", got)
	}
}

func TestToMillionsBoundary(t *testing.T) {
	// Exactly at the threshold counts as already-in-millions.
	if got := ToMillions(100000); got != 100000 {
		t.Errorf("expected 100000 unchanged, got %v", got)
	}
	if got := ToMillions(100001); got != 0.100001 {
		t.Errorf("expected 0.100001, got %v", got)
	}
}
