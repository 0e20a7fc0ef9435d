package corpus

import (
	"bufio"
	"io"
	"iter"
)

// Writer writes tagged tokens one per line.
type Writer struct {
	w *bufio.Writer
	n int
}

// NewWriter wraps w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits tok as "word/tag\n".
func (w *Writer) Write(tok Token) error {
	if _, err := w.w.WriteString(tok.String()); err != nil {
		return err
	}
	w.n++
	return w.w.WriteByte('\n')
}

// WriteAll drains seq into the writer and flushes.
func (w *Writer) WriteAll(seq iter.Seq[Token]) error {
	for tok := range seq {
		if err := w.Write(tok); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Count returns the number of tokens written so far.
func (w *Writer) Count() int { return w.n }

// Flush flushes buffered output.
func (w *Writer) Flush() error { return w.w.Flush() }
