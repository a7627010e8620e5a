package steno

// Precision signals how literally a command should be interpreted.
type Precision string

const (
	PrecisionFlexible Precision = "flexible"
	PrecisionLiteral  Precision = "literal"
	PrecisionClarify  Precision = "clarify"
)

// Thinking selects the reasoning depth requested for the command.
type Thinking string

const (
	ThinkingNormal Thinking = "normal"
	ThinkingDeep   Thinking = "deep"
)

// TargetType is the inferred shape of a command target. The inference is
// best-effort pattern matching over sigils and file extensions; callers
// that know better may overwrite it.
type TargetType string

const (
	TargetNew    TargetType = "new"
	TargetNode   TargetType = "existing-node"
	TargetFile   TargetType = "file"
	TargetSymbol TargetType = "symbol"
)

// Target is the object of a command's verb.
type Target struct {
	Raw  string     `json:"raw"`
	Type TargetType `json:"type"`
}

// RefKind classifies a reference to earlier work or workspace objects.
type RefKind string

const (
	RefPrevious RefKind = "previous-output"
	RefNode     RefKind = "node"
	RefFile     RefKind = "file"
	RefSymbol   RefKind = "symbol"
)

// Reference points at a previous output (^, ^^, ^name), a session node
// (@name), a file (@name.ext) or a symbol (#name). For previous-output
// references Value holds the caret count and Selector the optional
// bookmark name.
type Reference struct {
	Kind     RefKind `json:"kind"`
	Value    string  `json:"value"`
	Selector string  `json:"selector,omitempty"`
}

// Flag is one behavioural modifier with its optional qualifier.
type Flag struct {
	Name      string `json:"name"`
	Qualifier string `json:"qualifier,omitempty"`
}

// Intent is the structured result of parsing one command string. It is
// immutable once returned and holds no resources; persisting it is the
// caller's business.
type Intent struct {
	Verb       string      `json:"verb"`
	Target     Target      `json:"target"`
	Additions  []string    `json:"additions,omitempty"`
	Exclusions []string    `json:"exclusions,omitempty"`
	Flags      []Flag      `json:"flags,omitempty"`
	Precision  Precision   `json:"precision"`
	Thinking   Thinking    `json:"thinking"`
	Mode       string      `json:"mode,omitempty"`
	References []Reference `json:"references,omitempty"`
	Freeform   []string    `json:"freeform,omitempty"`
	RawInput   string      `json:"raw_input"`

	// ModeDelegates records whether the selected mode is one that always
	// routes to an interpreting agent. Derived from the mode descriptor at
	// parse time so the mapper does not need the vocabulary.
	ModeDelegates bool `json:"mode_delegates,omitempty"`
}
