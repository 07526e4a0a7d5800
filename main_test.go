package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/store"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLangColumnWidth(t *testing.T) {
	langs := []string{"en", "pt-BR", "zh-Hant"}
	if got := langColumnWidth(langs); got != len("zh-Hant") {
		t.Fatalf("langColumnWidth() = %d, want %d", got, len("zh-Hant"))
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(filePath, []byte("ok"), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	if !fileExists(filePath) {
		t.Fatalf("fileExists(file) = false, want true")
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(directory) = true, want false")
	}
	if fileExists(filepath.Join(dir, "missing.txt")) {
		t.Fatalf("fileExists(missing) = true, want false")
	}
}

// ---------------------------------------------------------------------------
// Interactive session
// ---------------------------------------------------------------------------

// scriptedPrompter replays answers. Inputs rejected by the validator are
// consumed and the next answer is tried, like a re-prompt.
type scriptedPrompter struct {
	t        *testing.T
	selects  []int
	inputs   []string
	confirms []bool
	rejected []string
}

func (p *scriptedPrompter) Select(label string, items []string) (int, error) {
	if len(p.selects) == 0 {
		return 0, errQuit
	}
	i := p.selects[0]
	p.selects = p.selects[1:]
	require.Less(p.t, i, len(items), label)
	return i, nil
}

func (p *scriptedPrompter) Input(label string, validate func(string) error) (string, error) {
	for len(p.inputs) > 0 {
		v := p.inputs[0]
		p.inputs = p.inputs[1:]
		if validate != nil && validate(v) != nil {
			p.rejected = append(p.rejected, v)
			continue
		}
		return v, nil
	}
	return "", errQuit
}

func (p *scriptedPrompter) Confirm(label string) (bool, error) {
	if len(p.confirms) == 0 {
		return false, errQuit
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

func newTestSession(t *testing.T, p *scriptedPrompter) (*session, *store.Store, *int) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Parse([]byte(`{"languages": ["en", "ru"]}`))
	require.NoError(t, err)
	cfg.SrcFolder = filepath.Join(dir, "src")
	cfg.DistFolder = filepath.Join(dir, "dist")
	_, err = cfg.EnsureFolders()
	require.NoError(t, err)
	s := store.New(cfg)

	regens := 0
	sess := newSession(context.Background(), s, p)
	sess.regen = func(context.Context, *store.Store) error {
		regens++
		return nil
	}
	return sess, s, &regens
}

func readSrc(t *testing.T, s *store.Store, chunk, lang string) string {
	t.Helper()
	data, err := os.ReadFile(s.SrcPath(chunk, lang))
	require.NoError(t, err)
	return string(data)
}

func TestSessionCreateThenAddKeys(t *testing.T) {
	p := &scriptedPrompter{
		t: t,
		// create, then exit
		selects: []int{0, 3},
		inputs: []string{
			"bad-name", "greeting", // chunk name, first one rejected
			"hello", "Hi", "Привет", // first key
			"hello", "bye", "", "Bye", "", // duplicate key rejected, empty default rejected, ru skipped
		},
		confirms: []bool{true, true, false},
	}
	sess, s, regens := newTestSession(t, p)

	require.NoError(t, sess.Run())

	assert.Equal(t, []string{"bad-name", "hello", ""}, p.rejected)
	assert.Equal(t, "{\n    \"hello\": \"Hi\",\n    \"bye\": \"Bye\"\n}\n", readSrc(t, s, "greeting", "en"))
	assert.Equal(t, "{\n    \"hello\": \"Привет\"\n}\n", readSrc(t, s, "greeting", "ru"))
	assert.Equal(t, 1, *regens)
}

func TestSessionCreateWithoutKeysRegenerates(t *testing.T) {
	p := &scriptedPrompter{
		t:        t,
		selects:  []int{0, 3},
		inputs:   []string{"menu"},
		confirms: []bool{false},
	}
	sess, s, regens := newTestSession(t, p)

	require.NoError(t, sess.Run())
	assert.True(t, s.HasChunk("menu"))
	assert.Equal(t, 1, *regens)
}

func TestSessionAddToExistingChunk(t *testing.T) {
	p := &scriptedPrompter{
		t: t,
		// add keys, chunk #1 (menu), then exit
		selects:  []int{1, 1, 3},
		inputs:   []string{"open", "Open", "Открыть"},
		confirms: []bool{false},
	}
	sess, s, regens := newTestSession(t, p)
	require.NoError(t, sess.editor.CreateChunk(context.Background(), "dialog"))
	require.NoError(t, sess.editor.CreateChunk(context.Background(), "menu"))

	require.NoError(t, sess.Run())
	assert.Equal(t, "{\n    \"open\": \"Open\"\n}\n", readSrc(t, s, "menu", "en"))
	assert.Equal(t, "{}\n", readSrc(t, s, "dialog", "en"))
	assert.Equal(t, 1, *regens)
}

func TestSessionAddWithoutChunksReturnsToMenu(t *testing.T) {
	p := &scriptedPrompter{t: t, selects: []int{1, 2, 3}}
	sess, _, regens := newTestSession(t, p)

	require.NoError(t, sess.Run())
	assert.Equal(t, 1, *regens)
}

func TestSessionInterruptEndsQuietly(t *testing.T) {
	p := &scriptedPrompter{t: t, selects: []int{0}}
	sess, s, regens := newTestSession(t, p)

	require.NoError(t, sess.Run())
	names, err := s.ChunkNames()
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, 0, *regens)
}
