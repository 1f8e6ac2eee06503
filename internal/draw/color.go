package draw

import "strconv"

// Color is a palette index stored per canvas sub-pixel. ColorNone means unset.
type Color uint8

// Palette entries.
const (
	ColorNone Color = iota
	ColorYellow
	ColorOrange
	ColorWhite
	ColorBlack
	ColorRed
	ColorGreen
	ColorDarkGreen
	ColorLightGreen
	ColorBrown
	ColorSand
	ColorGray

	paletteSize
)

// xterm-256 codes for each palette entry.
var palette = [paletteSize]int{
	ColorNone:       0,
	ColorYellow:     220,
	ColorOrange:     208,
	ColorWhite:      231,
	ColorBlack:      236,
	ColorRed:        196,
	ColorGreen:      34,
	ColorDarkGreen:  22,
	ColorLightGreen: 113,
	ColorBrown:      94,
	ColorSand:       180,
	ColorGray:       245,
}

// ANSI text colours used by UI overlays.
const (
	ColorReset        = "\033[0m"
	ColorBold         = "\033[1m"
	ColorBrightCyan   = "\033[96m"
	ColorBrightYellow = "\033[93m"
	ColorDim          = "\033[2m"
)

// appendStyle appends the SGR sequence selecting fg and bg. ColorNone leaves
// the terminal default in place.
func appendStyle(buf []byte, fg, bg Color) []byte {
	buf = append(buf, "\033[0"...)
	if fg != ColorNone && int(fg) < len(palette) {
		buf = append(buf, ";38;5;"...)
		buf = strconv.AppendInt(buf, int64(palette[fg]), 10)
	}
	if bg != ColorNone && int(bg) < len(palette) {
		buf = append(buf, ";48;5;"...)
		buf = strconv.AppendInt(buf, int64(palette[bg]), 10)
	}
	return append(buf, 'm')
}
