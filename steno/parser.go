package steno

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultVerb is the create verb used when a command names no verb at all.
const DefaultVerb = "mk"

var (
	// ErrEmptyInput is returned for empty or whitespace-only commands.
	ErrEmptyInput = errors.New("empty command")
	// ErrNoTarget is returned when no target can be derived from the input.
	ErrNoTarget = errors.New("no target specified")
	// ErrUnknownFlag is returned in strict mode for unrecognised flags.
	ErrUnknownFlag = errors.New("unknown flag")
)

// Config controls parser construction. The zero value resolves the core
// vocabulary from a fresh registry, parses leniently and defaults the
// verb to DefaultVerb.
type Config struct {
	// Registry supplies extensions; nil means a fresh registry holding
	// only the core extension.
	Registry *ExtensionRegistry
	// Vocabulary selects which extensions and custom entries to resolve.
	Vocabulary VocabConfig
	// Strict makes unknown flags and unrecognised dot-modifiers fatal
	// instead of degrading into warnings.
	Strict bool
	// DefaultVerb overrides the verb assumed for verbless commands.
	DefaultVerb string
	Logger      *zap.Logger
}

// Parser turns command strings into Intents against a vocabulary resolved
// once at construction. A Parser is immutable and safe for concurrent use.
type Parser struct {
	vocab       *ResolvedVocabulary
	strict      bool
	defaultVerb string
	logger      *zap.Logger
}

// ParseResult carries a successful parse: the Intent plus any non-fatal
// warnings accumulated along the way.
type ParseResult struct {
	Intent   *Intent
	Warnings []string
}

// NewParser resolves the vocabulary and builds a parser. Vocabulary
// resolution warnings (unknown extensions, alias collisions) are logged;
// resolution itself never fails.
func NewParser(cfg Config) *Parser {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewExtensionRegistry(logger)
	}
	vocab, warnings := registry.Resolve(cfg.Vocabulary)
	for _, w := range warnings {
		logger.Warn("vocabulary resolution", zap.String("warning", w))
	}
	defaultVerb := cfg.DefaultVerb
	if defaultVerb == "" {
		defaultVerb = DefaultVerb
	}
	return &Parser{
		vocab:       vocab,
		strict:      cfg.Strict,
		defaultVerb: defaultVerb,
		logger:      logger,
	}
}

// Vocabulary exposes the resolved vocabulary the parser works against.
func (p *Parser) Vocabulary() *ResolvedVocabulary {
	return p.vocab
}

// Parse converts one command string into an Intent. Only two conditions
// are fatal: empty input and input from which no target can be derived
// (plus unknown flags when the parser is strict). Everything else
// degrades into warnings, because the output feeds a downstream agent
// that tolerates imprecision better than it tolerates hard failure.
func (p *Parser) Parse(input string) (*ParseResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	tokens := Tokenize(input, p.vocab)
	intent := &Intent{
		Precision: PrecisionFlexible,
		Thinking:  ThinkingNormal,
		RawInput:  input,
	}
	var warnings []string

	verbIdx := -1
	for i, tok := range tokens {
		if tok.Kind == TokenVerbTarget {
			verbIdx = i
			break
		}
	}

	// consumedFreeform marks the freeform token used as the implicit
	// target so the walk below does not add it again as a fragment.
	consumedFreeform := -1
	if verbIdx >= 0 {
		tok := tokens[verbIdx]
		intent.Verb = p.vocab.ResolveAlias(tok.Value)
		intent.Target = Target{Raw: tok.Qualifier}
	} else {
		target, idx, ws, err := p.fallbackTarget(tokens)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, ws...)
		intent.Verb = p.defaultVerb
		intent.Target = target
		consumedFreeform = idx
		warnings = append(warnings, fmt.Sprintf("no verb specified, defaulted to %q", p.defaultVerb))
	}

	for i, tok := range tokens {
		switch tok.Kind {
		case TokenVerbTarget:
			if i != verbIdx {
				intent.Freeform = append(intent.Freeform, tok.Raw)
				warnings = append(warnings, fmt.Sprintf("extra verb:target segment %q treated as freeform", tok.Raw))
			}
		case TokenMode:
			intent.Mode = tok.Value
			if def, ok := p.vocab.Modes[tok.Value]; ok {
				intent.ModeDelegates = def.Delegates
			}
		case TokenDeepThinking:
			intent.Thinking = ThinkingDeep
		case TokenPrecision:
			switch tok.Value {
			case "~":
				intent.Precision = PrecisionFlexible
			case "!":
				intent.Precision = PrecisionLiteral
			case "?":
				intent.Precision = PrecisionClarify
			}
		case TokenFlag:
			if !p.vocab.knowsFlag(tok.Value) {
				if p.strict {
					return nil, fmt.Errorf("%w: %q", ErrUnknownFlag, tok.Value)
				}
				warnings = append(warnings, fmt.Sprintf("unknown flag %q dropped", tok.Value))
				continue
			}
			intent.Flags = append(intent.Flags, Flag{Name: tok.Value, Qualifier: tok.Qualifier})
		case TokenAddition:
			if p.strict && strings.HasPrefix(tok.Raw, ".") {
				return nil, fmt.Errorf("%w: %q", ErrUnknownFlag, tok.Raw)
			}
			intent.Additions = append(intent.Additions, tok.Value)
		case TokenExclusion:
			intent.Exclusions = append(intent.Exclusions, tok.Value)
		case TokenPreviousRef:
			intent.References = append(intent.References, Reference{Kind: RefPrevious, Value: tok.Value, Selector: tok.Qualifier})
		case TokenFileRef:
			intent.References = append(intent.References, Reference{Kind: RefFile, Value: tok.Value, Selector: tok.Qualifier})
		case TokenNodeRef:
			intent.References = append(intent.References, Reference{Kind: RefNode, Value: tok.Value, Selector: tok.Qualifier})
		case TokenSymbolRef:
			intent.References = append(intent.References, Reference{Kind: RefSymbol, Value: tok.Value})
		case TokenQuoted, TokenFreeform:
			if i == consumedFreeform {
				continue
			}
			intent.Freeform = append(intent.Freeform, tok.Value)
		}
	}

	// A trailing ? or ! glued to the target is more local than a
	// standalone marker elsewhere in the command, so it wins.
	if raw := intent.Target.Raw; len(raw) > 1 {
		switch raw[len(raw)-1] {
		case '?':
			intent.Target.Raw = raw[:len(raw)-1]
			intent.Precision = PrecisionClarify
		case '!':
			intent.Target.Raw = raw[:len(raw)-1]
			intent.Precision = PrecisionLiteral
		}
	}
	if intent.Target.Type == "" {
		intent.Target.Type = inferTargetType(intent.Target.Raw)
	}

	return &ParseResult{Intent: intent, Warnings: warnings}, nil
}

// fallbackTarget derives a target for a verbless command: the first
// freeform chunk if any, else the first reference. Returns the target,
// the index of the consumed freeform token (or -1) and any warnings.
func (p *Parser) fallbackTarget(tokens []Token) (Target, int, []string, error) {
	var warnings []string
	for i, tok := range tokens {
		if tok.Kind != TokenFreeform {
			continue
		}
		// word:rest with an unregistered verb lexes as one freeform
		// chunk; a near-miss on a known verb deserves a pointer.
		if colon := strings.IndexByte(tok.Value, ':'); colon > 0 {
			word := tok.Value[:colon]
			if cand, ok := suggestVerb(p.vocab, word); ok {
				warnings = append(warnings, fmt.Sprintf("unknown verb %q (did you mean %q?)", word, cand))
			}
		}
		return Target{Raw: tok.Value}, i, warnings, nil
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenFileRef:
			return Target{Raw: tok.Value, Type: TargetFile}, -1, warnings, nil
		case TokenNodeRef:
			return Target{Raw: tok.Value, Type: TargetNode}, -1, warnings, nil
		case TokenSymbolRef:
			return Target{Raw: tok.Value, Type: TargetSymbol}, -1, warnings, nil
		case TokenPreviousRef:
			return Target{Raw: tok.Raw, Type: TargetNode}, -1, warnings, nil
		}
	}
	return Target{}, -1, nil, ErrNoTarget
}

// knownExtensions is the allowlist behind the file heuristic of
// inferTargetType. Targets without a sigil that end in one of these are
// treated as files.
var knownExtensions = map[string]bool{
	"ts": true, "tsx": true, "js": true, "jsx": true, "py": true,
	"go": true, "rs": true, "rb": true, "java": true, "c": true,
	"cpp": true, "h": true, "css": true, "html": true, "json": true,
	"yaml": true, "yml": true, "toml": true, "md": true, "txt": true,
	"csv": true, "sql": true, "sh": true,
}

// inferTargetType guesses the target shape from its spelling. The sigil
// rules are reliable; the extension suffix rule is best-effort and can
// misread unusual names, which is an accepted limitation of the grammar.
func inferTargetType(raw string) TargetType {
	switch {
	case strings.HasPrefix(raw, "@") && strings.Contains(raw[1:], "."):
		return TargetFile
	case strings.HasPrefix(raw, "@"):
		return TargetNode
	case strings.HasPrefix(raw, "#"):
		return TargetSymbol
	}
	if dot := strings.LastIndexByte(raw, '.'); dot > 0 && dot < len(raw)-1 {
		if knownExtensions[strings.ToLower(raw[dot+1:])] {
			return TargetFile
		}
	}
	return TargetNew
}
