package draw

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
	seqAltScreen  = "\033[?1049h"
	seqMainScreen = "\033[?1049l"
)

// maxChunkSize is the most bytes handed to the connection in one write.
// 1400 bytes stays under a typical MTU, which keeps SSH frames smooth.
const maxChunkSize = 1400

// ChunkWriter collects one frame of terminal output and sends it in
// MTU-sized chunks on Flush. Positions are 1-based and shifted by the
// viewport offset.
type ChunkWriter struct {
	out    io.Writer
	buf    []byte
	offCol int
	offRow int
}

// NewChunkWriter returns a writer that flushes to w.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    w,
		buf:    make([]byte, 0, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the origin, e.g. after a resize re-centred the viewport.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// Write appends raw bytes. Canvas.Render writes through here.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.buf = append(cw.buf, p...)
	return len(p), nil
}

// Clear queues a full terminal clear.
func (cw *ChunkWriter) Clear() {
	cw.buf = append(cw.buf, seqClear...)
}

// WriteAt writes s at a canvas position.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.buf = appendCursor(cw.buf, col+cw.offCol, row+cw.offRow)
	cw.buf = append(cw.buf, s...)
}

// WriteStyledAt writes s at a canvas position wrapped in an ANSI style.
func (cw *ChunkWriter) WriteStyledAt(col, row int, style, s string) {
	cw.buf = appendCursor(cw.buf, col+cw.offCol, row+cw.offRow)
	cw.buf = append(cw.buf, style...)
	cw.buf = append(cw.buf, s...)
	cw.buf = append(cw.buf, ColorReset...)
}

// Len returns the number of bytes waiting to be flushed.
func (cw *ChunkWriter) Len() int {
	return len(cw.buf)
}

// Flush sends the frame and empties the buffer.
func (cw *ChunkWriter) Flush() error {
	err := writeChunked(cw.out, cw.buf)
	cw.buf = cw.buf[:0]
	return err
}

var _ io.Writer = (*ChunkWriter)(nil)

func writeChunked(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n := min(len(buf), maxChunkSize)
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// appendCursor appends a 1-based cursor move.
func appendCursor(buf []byte, col, row int) []byte {
	buf = append(buf, "\033["...)
	buf = strconv.AppendInt(buf, int64(row), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(col), 10)
	return append(buf, 'H')
}

// TermSizeFunc reports the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// StdoutSize reads the size of the process terminal.
var StdoutSize TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FixedTermSize returns a TermSizeFunc reporting a constant size.
func FixedTermSize(width, height int) TermSizeFunc {
	return func() (int, int, error) {
		return width, height, nil
	}
}

// Viewport is the region of a terminal the game renders into.
type Viewport struct {
	Width, Height        int
	OffsetCol, OffsetRow int
}

// FitViewport caps a terminal at maxWidth x maxHeight and centres the result.
func FitViewport(termWidth, termHeight, maxWidth, maxHeight int) Viewport {
	w := min(termWidth, maxWidth)
	h := min(termHeight, maxHeight)
	return Viewport{
		Width:     w,
		Height:    h,
		OffsetCol: (termWidth - w) / 2,
		OffsetRow: (termHeight - h) / 2,
	}
}

// EnterScreen switches to the alternate screen and hides the cursor.
func EnterScreen(w io.Writer) error {
	_, err := io.WriteString(w, seqAltScreen+seqHideCursor+seqClear)
	return err
}

// LeaveScreen undoes EnterScreen.
func LeaveScreen(w io.Writer) error {
	_, err := io.WriteString(w, seqClear+seqShowCursor+seqMainScreen)
	return err
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, seqClear)
	return err
}
