package upload

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// TerminalView records controller state and, with Trace set, writes every
// affordance change to Out. Without Trace nothing is written; callers read
// the final state through Output and the other accessors.
type TerminalView struct {
	Out   io.Writer
	Trace bool

	mu       sync.Mutex
	fileName string
	enabled  bool
	label    string
	output   string
}

// NewTerminalView creates a TerminalView writing to out
func NewTerminalView(out io.Writer, trace bool) *TerminalView {
	return &TerminalView{Out: out, Trace: trace}
}

func (v *TerminalView) SetFileName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fileName = name
	v.tracef("file: %s\n", name)
}

func (v *TerminalView) SetProcessEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
	if enabled {
		v.tracef("[%s] enabled\n", v.label)
	} else {
		v.tracef("[%s] disabled\n", v.label)
	}
}

func (v *TerminalView) SetProcessLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
	v.tracef("button: %s\n", label)
}

func (v *TerminalView) SetOutput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.output = text
	v.tracef("output: %s\n", text)
}

// Output returns the last output text
func (v *TerminalView) Output() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.output
}

// FileName returns the file-name label
func (v *TerminalView) FileName() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fileName
}

// ProcessEnabled reports whether the process button is enabled
func (v *TerminalView) ProcessEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

// ProcessLabel returns the process button's label
func (v *TerminalView) ProcessLabel() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.label
}

func (v *TerminalView) tracef(format string, args ...any) {
	if v.Trace && v.Out != nil {
		fmt.Fprintf(v.Out, format, args...)
	}
}

// PathPicker picks files from a fixed list of paths
type PathPicker struct {
	Paths []string
}

// Pick loads every path. An empty list clears the selection.
func (p PathPicker) Pick(ctx context.Context) ([]File, error) {
	files := make([]File, 0, len(p.Paths))
	for _, path := range p.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
