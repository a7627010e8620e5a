package steno

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// CoreExtension is the name of the built-in vocabulary bundle every
// registry starts with. It cannot be unregistered.
const CoreExtension = "core"

// ExtensionRegistry is a caller-owned catalog of vocabulary extensions.
// Construct one, register extensions against it, then build parsers from
// it; there is no ambient process-wide registry. Registration is guarded
// by a mutex so a registry may be shared across goroutines, but resolved
// vocabularies are snapshots and never see later registrations.
type ExtensionRegistry struct {
	mu     sync.Mutex
	exts   map[string]Extension
	logger *zap.Logger
}

// NewExtensionRegistry returns a registry seeded with the core extension.
// A nil logger disables logging.
func NewExtensionRegistry(logger *zap.Logger) *ExtensionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ExtensionRegistry{
		exts:   map[string]Extension{CoreExtension: coreExtension()},
		logger: logger,
	}
	return r
}

// Register adds or replaces a named extension. Replacing an existing name
// is allowed and logged; the core extension cannot be replaced.
func (r *ExtensionRegistry) Register(ext Extension) error {
	if ext.Name == "" {
		return fmt.Errorf("register extension: name required")
	}
	if ext.Name == CoreExtension {
		return fmt.Errorf("register extension: %q is reserved", CoreExtension)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exts[ext.Name]; exists {
		r.logger.Info("replacing extension", zap.String("name", ext.Name))
	}
	r.exts[ext.Name] = ext
	return nil
}

// Unregister removes a named extension. Removing core or an unknown name
// is a no-op and returns false.
func (r *ExtensionRegistry) Unregister(name string) bool {
	if name == CoreExtension {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exts[name]; !ok {
		return false
	}
	delete(r.exts, name)
	return true
}

// Get looks up a registered extension by name.
func (r *ExtensionRegistry) Get(name string) (Extension, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext, ok := r.exts[name]
	return ext, ok
}

// List returns the registered extension names, core included.
func (r *ExtensionRegistry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.exts))
	for name := range r.exts {
		names = append(names, name)
	}
	return names
}

// Resolve merges the selected extensions into one vocabulary. Merge order
// is core (unless excluded), then cfg.Extensions in the order given, then
// the custom maps; later merges overwrite earlier entries. Unknown
// extension names produce a warning and are skipped so the parser still
// works with whatever vocabulary did resolve.
func (r *ExtensionRegistry) Resolve(cfg VocabConfig) (*ResolvedVocabulary, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vocab := newResolvedVocabulary()
	var warnings []string

	if !cfg.ExcludeCore {
		warnings = append(warnings, vocab.merge(r.exts[CoreExtension])...)
	}
	for _, name := range cfg.Extensions {
		ext, ok := r.exts[name]
		if !ok {
			w := fmt.Sprintf("unknown extension %q; skipping", name)
			warnings = append(warnings, w)
			r.logger.Warn("unknown extension requested", zap.String("name", name))
			continue
		}
		warnings = append(warnings, vocab.merge(ext)...)
	}
	if len(cfg.CustomVerbs) > 0 || len(cfg.CustomFlags) > 0 || len(cfg.CustomModes) > 0 {
		warnings = append(warnings, vocab.merge(Extension{
			Verbs: cfg.CustomVerbs,
			Flags: cfg.CustomFlags,
			Modes: cfg.CustomModes,
		})...)
	}
	return vocab, warnings
}

// coreExtension is the built-in vocabulary: the short action verbs, the
// language/behaviour flags and the operating modes of the steno grammar.
func coreExtension() Extension {
	return Extension{
		Name:        CoreExtension,
		Description: "built-in steno vocabulary",
		Verbs: map[string]VerbDef{
			"mk":  {Name: "make", Description: "create something new"},
			"ch":  {Name: "change", Description: "modify existing work"},
			"fx":  {Name: "fix", Description: "repair a defect"},
			"rf":  {Name: "refactor", Description: "restructure without behaviour change"},
			"fnd": {Name: "find", Description: "locate code, data or symbols"},
			"dx":  {Name: "diagnose", Description: "explore or profile data"},
			"viz": {Name: "visualize", Description: "render a chart or projection"},
			"fit": {Name: "fit", Description: "fit or train a model"},
			"tst": {Name: "test", Description: "write or run tests"},
			"doc": {Name: "document", Description: "write documentation"},
			"opt": {Name: "optimize", Description: "improve performance"},
			"rm":  {Name: "remove", Description: "delete something"},
			"mv":  {Name: "move", Description: "move or rename"},

			"new": {AliasOf: "mk"},
			"add": {AliasOf: "mk"},
			"ed":  {AliasOf: "ch"},
			"q":   {AliasOf: "fnd"},
		},
		Flags: map[string]FlagDef{
			"ts":   {Name: "typescript", Description: "target TypeScript"},
			"js":   {Name: "javascript", Description: "target JavaScript"},
			"py":   {Name: "python", Description: "target Python"},
			"go":   {Name: "go", Description: "target Go"},
			"rs":   {Name: "rust", Description: "target Rust"},
			"sql":  {Name: "sql", Description: "target SQL"},
			"md":   {Name: "markdown", Description: "produce Markdown"},
			"api":  {Name: "api", Description: "expose as an API"},
			"cli":  {Name: "cli", Description: "expose as a CLI"},
			"ui":   {Name: "ui", Description: "build a user interface"},
			"edge": {Name: "edge", Description: "deploy to the edge runtime"},
			"fast": {Name: "fast", Description: "prefer speed over polish"},
			"full": {Name: "full", Description: "complete treatment, no shortcuts"},
			"min":  {Name: "minimal", Description: "smallest viable output"},
			"dry":  {Name: "dry-run", Description: "describe, do not apply"},
		},
		Modes: map[string]ModeDef{
			"plan":      {Name: "plan", Description: "produce a plan before acting", Delegates: true},
			"sketch":    {Name: "sketch", Description: "rough outline only", Delegates: true},
			"challenge": {Name: "challenge", Description: "argue against the approach", Delegates: true},
			"explore":   {Name: "explore", Description: "open-ended investigation", Delegates: true},
			"execute":   {Name: "execute", Description: "act directly"},
		},
	}
}
