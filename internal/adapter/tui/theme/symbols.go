package theme

import (
	"os"
	"strconv"
)

// Glyphs used across the UI. UseASCII swaps them for plain-text fallbacks.
var (
	SymbolSuccess  string
	SymbolError    string
	SymbolArrowR   string
	SymbolBullet   string
	SymbolEllipsis string
	SymbolPlay     string
	SymbolPause    string
	SymbolCheck    string
	SymbolUncheck  string
	SymbolUser     = "You"
	SymbolBot      = "Assistant"
)

var glyphs = []struct {
	dst            *string
	unicode, ascii string
}{
	{&SymbolSuccess, "✓", "[OK]"},
	{&SymbolError, "✗", "[ERR]"},
	{&SymbolArrowR, "→", "->"},
	{&SymbolBullet, "•", "*"},
	{&SymbolEllipsis, "…", "..."},
	{&SymbolPlay, "▶", ">"},
	{&SymbolPause, "⏸", "||"},
	{&SymbolCheck, "☑", "[x]"},
	{&SymbolUncheck, "☐", "[ ]"},
}

// UseASCII selects the glyph set.
func UseASCII(ascii bool) {
	for _, g := range glyphs {
		*g.dst = g.unicode
		if ascii {
			*g.dst = g.ascii
		}
	}
}

// InitSymbols applies AITOOLS_ASCII_SYMBOLS, which accepts any value
// strconv.ParseBool does.
func InitSymbols() {
	ascii, _ := strconv.ParseBool(os.Getenv("AITOOLS_ASCII_SYMBOLS"))
	UseASCII(ascii)
}

func init() { InitSymbols() }
