package cli

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
)

var browsePaths = []string{"src/app.go", "src/lib/util.go", "README.md"}

func newTestBrowseModel(t *testing.T, opts pipeline.Options) *browseModel {
	t.Helper()
	m, err := newBrowseModel("paths.txt", browsePaths, opts, log.New(io.Discard))
	if err != nil {
		t.Fatalf("newBrowseModel() error: %v", err)
	}
	return m
}

func rowIDs(m *browseModel) []string {
	ids := make([]string, len(m.rows))
	for i, n := range m.rows {
		ids[i] = n.ID
	}
	return ids
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestBrowseModelToggle(t *testing.T) {
	m := newTestBrowseModel(t, pipeline.Options{})

	if want := []string{"README.md", "src"}; !slices.Equal(rowIDs(m), want) {
		t.Fatalf("initial rows = %v, want %v", rowIDs(m), want)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if want := []string{"README.md", "src", "src/app.go", "src/lib"}; !slices.Equal(rowIDs(m), want) {
		t.Fatalf("rows after opening src = %v, want %v", rowIDs(m), want)
	}
	if n, _ := m.current(); n.ID != "src" {
		t.Errorf("cursor on %q after toggle, want src", n.ID)
	}

	// Move to src/lib and open it with the right arrow.
	m.Update(keyRunes("G"))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !slices.Contains(rowIDs(m), "src/lib/util.go") {
		t.Errorf("rows after opening src/lib = %v", rowIDs(m))
	}

	// Left on a leaf jumps to its parent; left again closes it.
	m.Update(keyRunes("G"))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if n, _ := m.current(); n.ID != "src/lib" {
		t.Fatalf("cursor on %q after left on leaf, want src/lib", n.ID)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if slices.Contains(rowIDs(m), "src/lib/util.go") {
		t.Error("src/lib still open after left")
	}
	if got := m.orch.Expansion().Paths(); !slices.Equal(got, []string{"src"}) {
		t.Errorf("expansion = %v, want [src]", got)
	}
}

func TestBrowseModelToggleLeafIsNoop(t *testing.T) {
	m := newTestBrowseModel(t, pipeline.Options{})
	before := m.orch.Graph()

	m.Update(tea.KeyMsg{Type: tea.KeyEnter}) // README.md is a leaf
	if !graph.Equal(before, m.orch.Graph()) {
		t.Error("toggling a leaf changed the graph")
	}
	if m.orch.Expansion().Len() != 0 {
		t.Errorf("expansion = %v, want empty", m.orch.Expansion().Paths())
	}
}

func TestBrowseModelSeed(t *testing.T) {
	m := newTestBrowseModel(t, pipeline.Options{ExpandAll: true})
	if len(m.rows) != 5 {
		t.Errorf("expand-all rows = %v, want 5 nodes", rowIDs(m))
	}
}

func TestBrowseModelReload(t *testing.T) {
	m := newTestBrowseModel(t, pipeline.Options{ExpandAll: true})

	m.Update(pathsMsg{paths: []string{"docs/a.md", "docs/b.md"}})
	if want := []string{"docs"}; !slices.Equal(rowIDs(m), want) {
		t.Errorf("rows after reload = %v, want %v (expansion reset)", rowIDs(m), want)
	}
	if !strings.Contains(m.View(), "reloaded 2 paths") {
		t.Error("status line should report the reload")
	}

	m.Update(watchErrMsg{err: errors.New("decode failed")})
	if !strings.Contains(m.View(), "decode failed") {
		t.Error("status line should show the watch error")
	}
}

func TestBrowseModelScroll(t *testing.T) {
	m := newTestBrowseModel(t, pipeline.Options{ExpandAll: true})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: chromeLines + 3})

	m.Update(keyRunes("G"))
	if m.offset != len(m.rows)-3 {
		t.Errorf("offset = %d, want %d", m.offset, len(m.rows)-3)
	}
	m.Update(keyRunes("g"))
	if m.offset != 0 || m.cursor != 0 {
		t.Errorf("after top: cursor=%d offset=%d, want 0/0", m.cursor, m.offset)
	}
}

func TestParentID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a", ""},
		{"a/b", "a"},
		{"a/b/c.go", "a/b"},
	}
	for _, tt := range tests {
		if got := parentID(tt.in); got != tt.want {
			t.Errorf("parentID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBrowseProgram(t *testing.T) {
	m := newTestBrowseModel(t, pipeline.Options{})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("README.md"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(keyRunes(" "))
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("app.go"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyRunes("q"))
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))

	final, ok := fm.(*browseModel)
	if !ok {
		t.Fatalf("final model is %T", fm)
	}
	if got := final.orch.Expansion().Paths(); !slices.Equal(got, []string{"src"}) {
		t.Errorf("expansion = %v, want [src]", got)
	}
}
