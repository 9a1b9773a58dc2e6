package locator

import "strings"

// Trace accumulates a human readable lookup log. A nil *Trace discards
// everything, so lookups outside debug mode pay nothing for it.
type Trace struct {
	b strings.Builder
}

// NewTrace starts a trace for the renderer serving dir.
func NewTrace(dir string) *Trace {
	t := &Trace{}
	t.b.WriteString("Testing renderer for directory '")
	t.b.WriteString(dir)
	t.b.WriteString("'\n")
	return t
}

func (t *Trace) tested(path string) {
	if t == nil {
		return
	}
	t.b.WriteString("  Tested file: ")
	t.b.WriteString(path)
	t.b.WriteByte('\n')
}

func (t *Trace) found(path string) {
	if t == nil {
		return
	}
	t.b.WriteString("  Found file: ")
	t.b.WriteString(path)
	t.b.WriteByte('\n')
}

// Note appends a free form line.
func (t *Trace) Note(line string) {
	if t == nil {
		return
	}
	t.b.WriteString("  ")
	t.b.WriteString(line)
	t.b.WriteByte('\n')
}

func (t *Trace) String() string {
	if t == nil {
		return ""
	}
	return t.b.String()
}
