package theme

import (
	"testing"

	"aitools/internal/domain"
)

func TestInitSymbolsFollowsEnv(t *testing.T) {
	t.Cleanup(func() { UseASCII(false) })

	t.Setenv("AITOOLS_ASCII_SYMBOLS", "1")
	InitSymbols()
	if SymbolSuccess != "[OK]" || SymbolCheck != "[x]" || SymbolPlay != ">" {
		t.Errorf("ASCII symbols not applied: %q %q %q", SymbolSuccess, SymbolCheck, SymbolPlay)
	}

	t.Setenv("AITOOLS_ASCII_SYMBOLS", "")
	InitSymbols()
	if SymbolSuccess != "✓" || SymbolBot != "Assistant" {
		t.Errorf("unicode symbols not applied: %q %q", SymbolSuccess, SymbolBot)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want int }{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d,%d,%d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestForStatusDistinguishesOutcomes(t *testing.T) {
	if ForStatus(domain.StatusSucceeded).GetForeground() == ForStatus(domain.StatusFailed).GetForeground() {
		t.Error("succeeded and failed should use different colors")
	}
	if ForStatus(domain.StatusIdle).GetForeground() != TextMuted.GetForeground() {
		t.Error("idle should be muted")
	}
	if ForStatus(domain.StatusInFlight).GetForeground() != ForStatus(domain.StatusValidating).GetForeground() {
		t.Error("busy states should share a color")
	}
}
