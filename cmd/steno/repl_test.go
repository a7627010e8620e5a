package main

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func testREPLModel(t *testing.T) replModel {
	t.Helper()
	m, err := newREPLModel(&appOptions{}, zap.NewNop())
	if err != nil {
		t.Fatalf("newREPLModel failed: %v", err)
	}
	return m
}

func TestEvaluateDelegatesUnmatchedCommand(t *testing.T) {
	m := testREPLModel(t)
	out, isErr := m.evaluate("mk:todo-app")
	if isErr {
		t.Fatalf("lenient evaluation should not error: %q", out)
	}
	if !strings.Contains(out, "delegate:") {
		t.Fatalf("expected delegation output, got %q", out)
	}
}

func TestEvaluateReportsParseError(t *testing.T) {
	m := testREPLModel(t)
	out, isErr := m.evaluate("   ")
	if !isErr {
		t.Fatalf("empty input should error, got %q", out)
	}
}

func TestEvaluateRendersClarifyOptions(t *testing.T) {
	m := testREPLModel(t)
	out, isErr := m.evaluate("mk:auth?")
	if isErr {
		t.Fatalf("clarify should not be an error: %q", out)
	}
	if !strings.Contains(out, "1.") {
		t.Fatalf("expected numbered clarify options, got %q", out)
	}
}

func TestAutocompleteCompletesSingleVerb(t *testing.T) {
	m := testREPLModel(t)
	m.textInput.SetValue("vi")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "viz:" {
		t.Fatalf("expected viz: completion, got %q", got)
	}
}

func TestAutocompleteListsMultipleMatches(t *testing.T) {
	m := testREPLModel(t)
	m.textInput.SetValue("f")
	m = m.handleAutocomplete()
	if len(m.history) != 1 || !strings.Contains(m.history[0].output, "Completions:") {
		t.Fatalf("expected a completions listing, got %+v", m.history)
	}
}

func TestAutocompleteCompletesFlags(t *testing.T) {
	m := testREPLModel(t)
	m.textInput.SetValue("mk:app .ed")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "mk:app .edge" {
		t.Fatalf("expected .edge completion, got %q", got)
	}
}

func TestCommandQuit(t *testing.T) {
	m := testREPLModel(t)
	m, cmd := m.handleCommand(":quit")
	if !m.quitting {
		t.Fatalf("expected quitting state")
	}
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
}

func TestCommandUnknown(t *testing.T) {
	m := testREPLModel(t)
	m, _ = m.handleCommand(":bogus")
	if len(m.history) != 1 || !m.history[0].isErr {
		t.Fatalf("expected an unknown-command error entry, got %+v", m.history)
	}
}
