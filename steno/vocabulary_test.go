package steno

import (
	"strings"
	"testing"
)

func TestResolveIncludesCoreByDefault(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	vocab, _ := reg.Resolve(VocabConfig{})
	if !vocab.knowsVerb("mk") || !vocab.knowsFlag("ts") || !vocab.knowsMode("plan") {
		t.Fatalf("core vocabulary missing expected entries")
	}

	vocab, _ = reg.Resolve(VocabConfig{ExcludeCore: true})
	if vocab.knowsVerb("mk") {
		t.Fatalf("ExcludeCore should drop core verbs")
	}
}

func TestUnknownExtensionWarnsAndContinues(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	vocab, warnings := reg.Resolve(VocabConfig{Extensions: []string{"nope"}})
	if len(warnings) != 1 || !strings.Contains(warnings[0], "nope") {
		t.Fatalf("expected one warning naming the extension, got %v", warnings)
	}
	if !vocab.knowsVerb("mk") {
		t.Fatalf("resolution must continue with the merged vocabulary")
	}
}

func TestExtensionMergeOrder(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	err := reg.Register(Extension{
		Name: "ml",
		Verbs: map[string]VerbDef{
			"fit": {Name: "fit-override", Description: "from ml"},
			"aug": {Name: "augment"},
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	vocab, _ := reg.Resolve(VocabConfig{
		Extensions: []string{"ml"},
		CustomVerbs: map[string]VerbDef{
			"aug": {Name: "augment-custom"},
		},
	})
	if vocab.Verbs["fit"].Name != "fit-override" {
		t.Fatalf("extension should overwrite core: %+v", vocab.Verbs["fit"])
	}
	if vocab.Verbs["aug"].Name != "augment-custom" {
		t.Fatalf("custom entries merge last: %+v", vocab.Verbs["aug"])
	}
}

func TestCoreCannotBeUnregistered(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	if reg.Unregister(CoreExtension) {
		t.Fatalf("core must not be unregisterable")
	}
	if _, ok := reg.Get(CoreExtension); !ok {
		t.Fatalf("core should still be present")
	}
	if reg.Unregister("absent") {
		t.Fatalf("unregistering an unknown name should report false")
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	if err := reg.Register(Extension{}); err == nil {
		t.Fatalf("nameless extension must be rejected")
	}
	if err := reg.Register(Extension{Name: CoreExtension}); err == nil {
		t.Fatalf("core name is reserved")
	}
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	if err := reg.Register(Extension{Name: "viz-extra"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	names := reg.List()
	found := false
	for _, n := range names {
		if n == "viz-extra" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected viz-extra in %v", names)
	}
	if !reg.Unregister("viz-extra") {
		t.Fatalf("expected unregister to succeed")
	}
	if _, ok := reg.Get("viz-extra"); ok {
		t.Fatalf("viz-extra should be gone")
	}
}

func TestAliasCollidingWithVerbKeepsVerb(t *testing.T) {
	reg := NewExtensionRegistry(nil)
	err := reg.Register(Extension{
		Name: "bad",
		Verbs: map[string]VerbDef{
			// "ch" is already a core verb; an alias entry for the same
			// token would be ambiguous.
			"ch": {AliasOf: "mk"},
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	vocab, warnings := reg.Resolve(VocabConfig{Extensions: []string{"bad"}})
	if vocab.ResolveAlias("ch") != "ch" {
		t.Fatalf("verb entry must win over the alias")
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "ch") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a collision warning, got %v", warnings)
	}
}
