// Package logging colors the level tags written through the standard log
// package and filters debug lines.
package logging

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	infoColor      = color.New(color.FgGreen)
	warnColor      = color.New(color.FgHiYellow)
	errorColor     = color.New(color.FgHiRed)
	debugColor     = color.New(color.FgHiBlack)
	componentColor = color.New(color.FgCyan)
)

// Writer is an io.Writer for log.SetOutput. Each write is one log line.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
}

func NewWriter(out io.Writer, debug bool) *Writer {
	return &Writer{out: out, debug: debug}
}

// Setup routes the standard logger through a Writer on stderr.
func Setup(debug bool) {
	log.SetFlags(log.LstdFlags)
	log.SetOutput(NewWriter(os.Stderr, debug))
}

func (w *Writer) Write(p []byte) (int, error) {
	start, end := firstTag(p)
	if start < 0 {
		return w.write(p, len(p))
	}

	tag := string(p[start:end])
	if tag == "[DEBUG]" && !w.debug {
		return len(p), nil
	}

	var buf bytes.Buffer
	buf.Grow(len(p) + 16)
	buf.Write(p[:start])
	buf.WriteString(colorFor(tag).Sprint(tag))
	buf.Write(p[end:])
	return w.write(buf.Bytes(), len(p))
}

func (w *Writer) write(b []byte, n int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(b); err != nil {
		return 0, err
	}
	return n, nil
}

// firstTag finds the first "[...]" in a line.
func firstTag(p []byte) (int, int) {
	start := bytes.IndexByte(p, '[')
	if start < 0 {
		return -1, -1
	}
	end := bytes.IndexByte(p[start:], ']')
	if end < 0 {
		return -1, -1
	}
	return start, start + end + 1
}

func colorFor(tag string) *color.Color {
	switch tag {
	case "[INFO]":
		return infoColor
	case "[WARN]":
		return warnColor
	case "[ERR]", "[ERROR]":
		return errorColor
	case "[DEBUG]":
		return debugColor
	default:
		return componentColor
	}
}
