package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/minios-linux/resxgen/editor"
	"github.com/minios-linux/resxgen/generate"
	"github.com/minios-linux/resxgen/i18n"
	"github.com/minios-linux/resxgen/langmeta"
	"github.com/minios-linux/resxgen/store"
)

// errQuit ends the interactive session (Ctrl+C or Ctrl+D at a prompt).
var errQuit = errors.New("quit")

// prompter asks the user for input.
type prompter interface {
	Select(label string, items []string) (int, error)
	Input(label string, validate func(string) error) (string, error)
	Confirm(label string) (bool, error)
}

// promptuiPrompter asks on the terminal.
type promptuiPrompter struct{}

var selectTemplates = &promptui.SelectTemplates{
	Help: "↓ ↑",
}

func (promptuiPrompter) Select(label string, items []string) (int, error) {
	i, _, err := (&promptui.Select{
		Label:     label,
		Items:     items,
		Size:      10,
		Templates: selectTemplates,
	}).Run()
	return i, mapPromptErr(err)
}

func (promptuiPrompter) Input(label string, validate func(string) error) (string, error) {
	v, err := (&promptui.Prompt{
		Label:    label,
		Validate: promptui.ValidateFunc(validate),
	}).Run()
	return v, mapPromptErr(err)
}

func (promptuiPrompter) Confirm(label string) (bool, error) {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, mapPromptErr(err)
	}
	return true, nil
}

func mapPromptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errQuit
	}
	return err
}

// ---------------------------------------------------------------------------
// Session state machine
// ---------------------------------------------------------------------------

type state int

const (
	stateMenu state = iota
	stateCreate
	stateAskKeys
	stateChooseChunk
	stateAddKey
	stateAskMore
	stateRegen
	stateDone
)

// session runs the interactive flow:
//
//	menu -> create -> ask keys? -> add key -> one more? -> regen -> menu
//	menu -> choose chunk -> add key -> one more? -> regen -> menu
//	menu -> regen -> menu
//
// A failed single-target step goes back to the menu without running the
// steps that depend on it.
type session struct {
	ctx    context.Context
	p      prompter
	store  *store.Store
	editor *editor.Editor
	regen  func(ctx context.Context, s *store.Store) error

	state state
	chunk string
}

func newSession(ctx context.Context, s *store.Store, p prompter) *session {
	return &session{
		ctx:    ctx,
		p:      p,
		store:  s,
		editor: editor.New(s),
		regen:  runRegen,
	}
}

// Run drives the state machine until the user exits.
func (s *session) Run() error {
	s.state = stateMenu
	for s.state != stateDone {
		next, err := s.step()
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		s.state = next
	}
	return nil
}

func (s *session) step() (state, error) {
	switch s.state {
	case stateMenu:
		return s.menu()
	case stateCreate:
		return s.create()
	case stateAskKeys:
		return s.confirm(i18n.T("Add keys to the new chunk now"), stateAddKey, stateRegen)
	case stateChooseChunk:
		return s.chooseChunk()
	case stateAddKey:
		return s.addKey()
	case stateAskMore:
		return s.confirm(i18n.T("Add one more key"), stateAddKey, stateRegen)
	case stateRegen:
		if err := s.regen(s.ctx, s.store); err != nil {
			logError("%v", err)
		}
		return stateMenu, nil
	}
	return stateDone, nil
}

func (s *session) menu() (state, error) {
	items := []string{
		i18n.T("Create a new chunk"),
		i18n.T("Add keys to an existing chunk"),
		i18n.T("Regenerate all"),
		i18n.T("Exit"),
	}
	i, err := s.p.Select(i18n.T("What would you like to do"), items)
	if err != nil {
		return stateDone, err
	}
	return []state{stateCreate, stateChooseChunk, stateRegen, stateDone}[i], nil
}

func (s *session) create() (state, error) {
	name, err := s.p.Input(i18n.T("Chunk name"), func(v string) error {
		if err := generate.ValidateChunkName(strings.TrimSpace(v)); err != nil {
			return err
		}
		if s.store.HasChunk(strings.TrimSpace(v)) {
			return fmt.Errorf(i18n.T("chunk %s already exists"), strings.TrimSpace(v))
		}
		return nil
	})
	if err != nil {
		return stateMenu, err
	}
	name = strings.TrimSpace(name)

	if err := s.editor.CreateChunk(s.ctx, name); err != nil {
		logError("%v", err)
		return stateMenu, nil
	}
	logSuccess(i18n.T("Chunk %s created"), name)
	s.chunk = name
	return stateAskKeys, nil
}

func (s *session) chooseChunk() (state, error) {
	chunks, err := s.store.ChunkNames()
	if err != nil {
		logError("%v", err)
		return stateMenu, nil
	}
	if len(chunks) == 0 {
		logWarning(i18n.T("No chunks found. Create one first."))
		return stateMenu, nil
	}
	i, err := s.p.Select(i18n.T("Chunk"), chunks)
	if err != nil {
		return stateMenu, err
	}
	s.chunk = chunks[i]
	return stateAddKey, nil
}

func (s *session) addKey() (state, error) {
	cfg := s.store.Config()

	key, err := s.p.Input(i18n.T("Key name"), func(v string) error {
		if err := generate.ValidateKeyName(strings.TrimSpace(v)); err != nil {
			return err
		}
		def, err := s.store.LoadDefault(s.chunk)
		if err != nil {
			return err
		}
		if def.Has(strings.TrimSpace(v)) {
			return fmt.Errorf(i18n.T("key %s already exists"), strings.TrimSpace(v))
		}
		return nil
	})
	if err != nil {
		return stateMenu, err
	}
	key = strings.TrimSpace(key)

	values := make(map[string]string, len(cfg.Languages))
	for _, lang := range append([]string{cfg.DefaultLang}, cfg.OtherLanguages()...) {
		required := lang == cfg.DefaultLang
		label := i18n.Tf("%s value (empty to skip)", langmeta.Label(lang))
		if required {
			label = i18n.Tf("%s value", langmeta.Label(lang))
		}
		v, err := s.p.Input(label, func(v string) error {
			if required && v == "" {
				return errors.New(i18n.T("the default language value cannot be empty"))
			}
			return nil
		})
		if err != nil {
			return stateMenu, err
		}
		if v != "" {
			values[lang] = v
		}
	}

	if err := s.editor.AddKey(s.ctx, s.chunk, key, values); err != nil {
		logError("%v", err)
		return stateMenu, nil
	}
	logSuccess(i18n.T("Key %s added to %s"), key, s.chunk)
	return stateAskMore, nil
}

func (s *session) confirm(label string, yes, no state) (state, error) {
	ok, err := s.p.Confirm(label)
	if err != nil {
		return stateMenu, err
	}
	if ok {
		return yes, nil
	}
	return no, nil
}
