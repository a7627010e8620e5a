package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shandley/stenograph/sessionlog"
	"github.com/shandley/stenograph/steno"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "steno "+version) {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestParseCommandPrintsIntentJSON(t *testing.T) {
	out, _, err := runRoot(t, "parse", "ch:login", "+rate-limit", ".ts:edge")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var intent steno.Intent
	if err := json.Unmarshal([]byte(out), &intent); err != nil {
		t.Fatalf("output is not intent JSON: %v\n%s", err, out)
	}
	if intent.Verb != "ch" || intent.Target.Raw != "login" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if len(intent.Additions) != 1 || intent.Additions[0] != "rate-limit" {
		t.Fatalf("unexpected additions: %v", intent.Additions)
	}
}

func TestParseCommandWarnsOnDefaultVerb(t *testing.T) {
	_, errOut, err := runRoot(t, "parse", "todo-app")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(errOut, "warning:") {
		t.Fatalf("expected a default-verb warning on stderr, got %q", errOut)
	}
}

func TestParseStrictRejectsUnknownFlag(t *testing.T) {
	_, _, err := runRoot(t, "--strict", "parse", "mk:app", ".nonsense")
	if err == nil {
		t.Fatalf("expected strict parse to fail on unknown flag")
	}
}

func TestMapCommandDelegatesWithoutPrimitives(t *testing.T) {
	out, _, err := runRoot(t, "map", "mk:todo-app")
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	var result steno.MappingResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not result JSON: %v\n%s", err, out)
	}
	if result.Kind != steno.ResultDelegate {
		t.Fatalf("expected delegation with an empty registry, got %s", result.Kind)
	}
}

func TestMapCommandUsesPrimitivesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primitives.yaml")
	writeFile(t, path, `primitives:
  - name: pca
    verb: viz
    target: pca
    input_slots: [data]
`)

	out, _, err := runRoot(t, "--primitives", path, "map", "viz:pca", "@data.csv")
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	var result steno.MappingResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not result JSON: %v\n%s", err, out)
	}
	if result.Kind != steno.ResultDirect || result.Direct.Primitive != "pca" {
		t.Fatalf("expected direct pca execution, got %+v", result)
	}
}

func TestVocabFileExtendsParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bio.yaml")
	writeFile(t, path, `name: bio
verbs:
  aln:
    name: align
`)

	out, _, err := runRoot(t, "--vocab", path, "parse", "aln:sequences")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var intent steno.Intent
	if err := json.Unmarshal([]byte(out), &intent); err != nil {
		t.Fatalf("output is not intent JSON: %v\n%s", err, out)
	}
	if intent.Verb != "aln" {
		t.Fatalf("custom verb not recognised: %+v", intent)
	}
}

func TestMapCommandAppendsSessionRecord(t *testing.T) {
	sessionPath := filepath.Join(t.TempDir(), "session.jsonl")

	if _, _, err := runRoot(t, "--session", sessionPath, "map", "mk:todo-app"); err != nil {
		t.Fatalf("map failed: %v", err)
	}

	log, err := sessionlog.Open(sessionPath)
	if err != nil {
		t.Fatalf("open session log: %v", err)
	}
	recs := log.Last(1)
	if len(recs) != 1 {
		t.Fatalf("expected one session record, got %d", len(recs))
	}
	if recs[0].Input != "mk:todo-app" || recs[0].Status != sessionlog.StatusDelegated {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
