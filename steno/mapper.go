package steno

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ReferenceResolver expands previous-output references into concrete
// output reference strings. The session log is the usual implementation;
// the mapper works without one by passing references through verbatim.
type ReferenceResolver interface {
	// Previous returns the outputs of the node `back` steps before the
	// current one (1 = the immediately preceding node).
	Previous(back int) ([]string, bool)
	// Bookmark returns the outputs of the node bookmarked under name.
	Bookmark(name string) ([]string, bool)
}

// ResultKind tags the variant of a MappingResult.
type ResultKind string

const (
	ResultDirect   ResultKind = "direct"
	ResultDelegate ResultKind = "delegate"
	ResultClarify  ResultKind = "clarify"
	ResultError    ResultKind = "error"
)

// MappingResult is the mapper's verdict on one intent. Exactly one of the
// variant fields matching Kind is set. "No primitive found" is an expected
// outcome modelled as a variant, not an error: most commands route to
// delegation.
type MappingResult struct {
	Kind     ResultKind       `json:"kind"`
	Direct   *DirectExecution `json:"direct,omitempty"`
	Delegate *Delegation      `json:"delegate,omitempty"`
	Clarify  *Clarification   `json:"clarify,omitempty"`
	Err      *MappingError    `json:"error,omitempty"`
}

// DirectExecution names a primitive with its resolved input slots and
// parameters, ready for an execution backend.
type DirectExecution struct {
	Primitive string            `json:"primitive"`
	Inputs    map[string]string `json:"inputs"`
	Params    map[string]any    `json:"params"`
}

// Delegation routes the intent to an interpreting agent with a
// synthesized context prompt.
type Delegation struct {
	Reason   string   `json:"reason"`
	Context  string   `json:"context"`
	Thinking Thinking `json:"thinking"`
}

// Clarification asks the user to pick between candidate readings.
type Clarification struct {
	Question string          `json:"question"`
	Options  []ClarifyOption `json:"options"`
}

// ClarifyOption is one candidate answer. An empty Primitive means "let
// the agent decide".
type ClarifyOption struct {
	Label       string `json:"label"`
	Primitive   string `json:"primitive,omitempty"`
	Description string `json:"description,omitempty"`
}

// MappingError reports an unmappable intent under strict configuration.
type MappingError struct {
	Message string `json:"message"`
}

// MapperConfig configures a Mapper. The zero value maps leniently with no
// reference resolution.
type MapperConfig struct {
	Registry *PrimitiveRegistry
	// Resolver expands ^-references during slot resolution. Optional.
	Resolver ReferenceResolver
	// Strict turns "no primitive found" into an error result instead of
	// a delegation.
	Strict bool
	Logger *zap.Logger
}

// Mapper routes an Intent to one of four outcomes: direct execution,
// delegation, clarification or error.
type Mapper struct {
	registry *PrimitiveRegistry
	resolver ReferenceResolver
	strict   bool
	logger   *zap.Logger
}

// NewMapper builds a mapper over a primitive registry.
func NewMapper(cfg MapperConfig) *Mapper {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewPrimitiveRegistry(logger)
	}
	return &Mapper{
		registry: registry,
		resolver: cfg.Resolver,
		strict:   cfg.Strict,
		logger:   logger,
	}
}

// Map decides how an intent should be handled. The rules run in priority
// order; explicit user signals (clarify precision, delegating modes)
// outrank inference, so the first matching rule wins.
func (m *Mapper) Map(intent *Intent) MappingResult {
	if intent.Precision == PrecisionClarify {
		return m.clarify(intent)
	}
	if intent.Mode != "" && intent.ModeDelegates {
		return m.delegate(intent, fmt.Sprintf("mode %q requires delegation", intent.Mode))
	}
	if len(intent.Freeform) > 0 {
		return m.delegate(intent, "freeform content requires interpretation")
	}
	if intent.Thinking == ThinkingDeep {
		return m.delegate(intent, "extended thinking requested")
	}

	stripped := strings.TrimPrefix(intent.Target.Raw, "@")
	desc, ok := m.registry.FindBestMatch(intent.Verb, stripped, intent.Additions)
	if !ok {
		if m.strict {
			return MappingResult{Kind: ResultError, Err: &MappingError{
				Message: fmt.Sprintf("no primitive mapping for %s:%s", intent.Verb, intent.Target.Raw),
			}}
		}
		return m.delegate(intent, "no direct primitive mapping found")
	}

	return MappingResult{Kind: ResultDirect, Direct: &DirectExecution{
		Primitive: desc.Name,
		Inputs:    m.resolveInputs(intent, desc),
		Params:    resolveParams(intent, desc),
	}}
}

// clarify enumerates the primitives on the intent's verb as options, or a
// single let-the-agent-decide option when the verb has none.
func (m *Mapper) clarify(intent *Intent) MappingResult {
	question := fmt.Sprintf("Which %q operation did you mean for %q?", intent.Verb, intent.Target.Raw)
	prims := m.registry.FindByVerb(intent.Verb)
	if len(prims) == 0 {
		return MappingResult{Kind: ResultClarify, Clarify: &Clarification{
			Question: question,
			Options: []ClarifyOption{
				{Label: "Let the agent decide"},
			},
		}}
	}
	options := make([]ClarifyOption, 0, len(prims))
	for _, prim := range prims {
		options = append(options, ClarifyOption{
			Label:       prim.Name,
			Primitive:   prim.Name,
			Description: prim.Category,
		})
	}
	return MappingResult{Kind: ResultClarify, Clarify: &Clarification{
		Question: question,
		Options:  options,
	}}
}

func (m *Mapper) delegate(intent *Intent, reason string) MappingResult {
	return MappingResult{Kind: ResultDelegate, Delegate: &Delegation{
		Reason:   reason,
		Context:  synthesizeContext(intent),
		Thinking: intent.Thinking,
	}}
}

// resolveInputs assigns reference strings to the primitive's input slots
// in order. A file or node target fills the first slot; remaining
// references fill subsequent slots; anything beyond the declared slots is
// dropped.
func (m *Mapper) resolveInputs(intent *Intent, desc PrimitiveDescriptor) map[string]string {
	inputs := make(map[string]string)
	slot := 0

	targetValue := ""
	if intent.Target.Type == TargetFile || intent.Target.Type == TargetNode {
		targetValue = strings.TrimPrefix(intent.Target.Raw, "@")
		if slot < len(desc.InputSlots) {
			inputs[desc.InputSlots[slot]] = targetValue
			slot++
		}
	}

	targetSeen := false
	for _, ref := range intent.References {
		if slot >= len(desc.InputSlots) {
			break
		}
		// The reference the target was derived from already occupies
		// slot zero; skip its first occurrence.
		if !targetSeen && targetValue != "" && ref.Value == targetValue {
			targetSeen = true
			continue
		}
		inputs[desc.InputSlots[slot]] = m.refString(ref)
		slot++
	}
	return inputs
}

// refString renders a reference as a concrete input string, consulting
// the resolver for previous-output references when one is available.
func (m *Mapper) refString(ref Reference) string {
	switch ref.Kind {
	case RefPrevious:
		if m.resolver != nil {
			if ref.Selector != "" {
				if outs, ok := m.resolver.Bookmark(ref.Selector); ok && len(outs) > 0 {
					return outs[0]
				}
			} else {
				back, err := strconv.Atoi(ref.Value)
				if err != nil || back < 1 {
					back = 1
				}
				if outs, ok := m.resolver.Previous(back); ok && len(outs) > 0 {
					return outs[0]
				}
			}
		}
		back, err := strconv.Atoi(ref.Value)
		if err != nil || back < 1 {
			back = 1
		}
		return strings.Repeat("^", back) + ref.Selector
	case RefSymbol:
		return "#" + ref.Value
	default:
		if ref.Selector != "" {
			return ref.Value + "#" + ref.Selector
		}
		return ref.Value
	}
}

// resolveParams merges the primitive's defaults with flag-derived
// parameters: a flag with a qualifier contributes its qualifier, one
// without contributes true.
func resolveParams(intent *Intent, desc PrimitiveDescriptor) map[string]any {
	params := make(map[string]any, len(desc.Defaults)+len(intent.Flags))
	for k, v := range desc.Defaults {
		params[k] = v
	}
	for _, f := range intent.Flags {
		if f.Qualifier != "" {
			params[f.Name] = f.Qualifier
		} else {
			params[f.Name] = true
		}
	}
	return params
}

// synthesizeContext builds the multi-line summary handed to a delegated
// agent.
func synthesizeContext(intent *Intent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation: %s:%s", intent.Verb, intent.Target.Raw)
	if len(intent.Additions) > 0 {
		fmt.Fprintf(&b, "\nWith: %s", strings.Join(intent.Additions, ", "))
	}
	if len(intent.Exclusions) > 0 {
		fmt.Fprintf(&b, "\nWithout: %s", strings.Join(intent.Exclusions, ", "))
	}
	if len(intent.References) > 0 {
		refs := make([]string, 0, len(intent.References))
		for _, ref := range intent.References {
			refs = append(refs, formatReference(ref))
		}
		fmt.Fprintf(&b, "\nReferences: %s", strings.Join(refs, ", "))
	}
	if len(intent.Freeform) > 0 {
		fmt.Fprintf(&b, "\nAdditional: %s", strings.Join(intent.Freeform, " "))
	}
	return b.String()
}

func formatReference(ref Reference) string {
	switch ref.Kind {
	case RefPrevious:
		back, err := strconv.Atoi(ref.Value)
		if err != nil || back < 1 {
			back = 1
		}
		return strings.Repeat("^", back) + ref.Selector
	case RefSymbol:
		return "#" + ref.Value
	case RefFile, RefNode:
		if ref.Selector != "" {
			return "@" + ref.Value + "." + ref.Selector
		}
		return "@" + ref.Value
	}
	return ref.Value
}
