package steno

// VerbDef describes one verb token. A non-empty AliasOf marks the entry as
// an alias of another verb; alias entries contribute to the resolved alias
// table instead of the verb table.
type VerbDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	AliasOf     string `yaml:"alias_of"`
}

// FlagDef describes one flag token (.flag or .flag:qualifier).
type FlagDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ModeDef describes one mode token (?mode or ~mode). Delegates marks modes
// that always route to an interpreting agent instead of direct execution.
type ModeDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Delegates   bool   `yaml:"delegates"`
}

// Extension is a named, registrable bundle of verbs, flags and modes
// layered onto the core vocabulary.
type Extension struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Verbs       map[string]VerbDef `yaml:"verbs"`
	Flags       map[string]FlagDef `yaml:"flags"`
	Modes       map[string]ModeDef `yaml:"modes"`
}

// VocabConfig selects what goes into a resolved vocabulary. The zero value
// resolves to the core vocabulary alone.
type VocabConfig struct {
	// ExcludeCore drops the built-in core extension from the merge.
	ExcludeCore bool
	// Extensions are registry names merged in order after core. Unknown
	// names produce a warning and are skipped.
	Extensions []string
	// Custom entries merge last and therefore win every collision.
	CustomVerbs map[string]VerbDef
	CustomFlags map[string]FlagDef
	CustomModes map[string]ModeDef
}

// ResolvedVocabulary is the merged lookup table a parser works against.
// It is built once per parser and never mutated afterwards.
type ResolvedVocabulary struct {
	Verbs map[string]VerbDef
	Flags map[string]FlagDef
	Modes map[string]ModeDef

	verbAliases map[string]string
}

func newResolvedVocabulary() *ResolvedVocabulary {
	return &ResolvedVocabulary{
		Verbs:       make(map[string]VerbDef),
		Flags:       make(map[string]FlagDef),
		Modes:       make(map[string]ModeDef),
		verbAliases: make(map[string]string),
	}
}

// merge layers an extension's entries onto the table, last write winning.
// Alias entries go to the alias table; an alias that names an already
// resolved non-alias verb is dropped and reported, since one token cannot
// be both a verb and an alias of another.
func (v *ResolvedVocabulary) merge(ext Extension) []string {
	var warnings []string
	for tok, def := range ext.Verbs {
		if def.AliasOf != "" {
			if _, taken := v.Verbs[tok]; taken {
				warnings = append(warnings, "alias "+tok+" collides with verb "+tok+"; keeping the verb")
				continue
			}
			v.verbAliases[tok] = def.AliasOf
			continue
		}
		delete(v.verbAliases, tok)
		v.Verbs[tok] = def
	}
	for tok, def := range ext.Flags {
		v.Flags[tok] = def
	}
	for tok, def := range ext.Modes {
		v.Modes[tok] = def
	}
	return warnings
}

// ResolveAlias normalises a verb token to its canonical form. Resolving an
// already-canonical verb is a no-op, so the operation is idempotent.
func (v *ResolvedVocabulary) ResolveAlias(verb string) string {
	if canonical, ok := v.verbAliases[verb]; ok {
		return canonical
	}
	return verb
}

func (v *ResolvedVocabulary) knowsVerb(tok string) bool {
	if _, ok := v.Verbs[tok]; ok {
		return true
	}
	_, ok := v.verbAliases[tok]
	return ok
}

func (v *ResolvedVocabulary) knowsFlag(tok string) bool {
	_, ok := v.Flags[tok]
	return ok
}

func (v *ResolvedVocabulary) knowsMode(tok string) bool {
	_, ok := v.Modes[tok]
	return ok
}

// VerbTokens returns all known verb tokens, canonical entries only.
func (v *ResolvedVocabulary) VerbTokens() []string {
	out := make([]string, 0, len(v.Verbs))
	for tok := range v.Verbs {
		out = append(out, tok)
	}
	return out
}
