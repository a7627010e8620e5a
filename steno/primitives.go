package steno

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// PrimitiveDescriptor declares one directly-executable operation: what
// triggers it, which input slots it takes (order determines positional
// assignment of resolved references) and its default parameters.
type PrimitiveDescriptor struct {
	Name string `yaml:"name"`
	// Verb triggers the primitive; Target narrows the trigger to one
	// exact (verb, target) pair when non-empty.
	Verb   string `yaml:"verb"`
	Target string `yaml:"target"`
	// RequiredAdditions, when non-empty, lets the primitive match any
	// intent on the verb whose additions include all of them.
	RequiredAdditions []string       `yaml:"required_additions"`
	InputSlots        []string       `yaml:"input_slots"`
	Defaults          map[string]any `yaml:"defaults"`
	Category          string         `yaml:"category"`
}

// PrimitiveRegistry indexes primitives for best-match lookup. Names are
// unique; registering a name again replaces the earlier descriptor. Two
// descriptors claiming the same (verb, target) pair also resolve
// last-registered-wins, which is logged rather than silent.
type PrimitiveRegistry struct {
	mu        sync.RWMutex
	ordered   []*PrimitiveDescriptor
	byName    map[string]*PrimitiveDescriptor
	byVerbTgt map[string]*PrimitiveDescriptor
	logger    *zap.Logger
}

// NewPrimitiveRegistry returns an empty registry. A nil logger disables
// logging.
func NewPrimitiveRegistry(logger *zap.Logger) *PrimitiveRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrimitiveRegistry{
		byName:    make(map[string]*PrimitiveDescriptor),
		byVerbTgt: make(map[string]*PrimitiveDescriptor),
		logger:    logger,
	}
}

// Register adds a primitive to the registry.
func (r *PrimitiveRegistry) Register(desc PrimitiveDescriptor) error {
	if desc.Name == "" || desc.Verb == "" {
		return fmt.Errorf("register primitive: name and verb required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[desc.Name]; ok {
		r.logger.Info("replacing primitive", zap.String("name", desc.Name))
		r.remove(prev)
	}
	d := &desc
	if desc.Target != "" {
		key := desc.Verb + ":" + desc.Target
		if prev, ok := r.byVerbTgt[key]; ok && prev.Name != desc.Name {
			r.logger.Info("primitive trigger collision, last registered wins",
				zap.String("trigger", key),
				zap.String("replaced", prev.Name),
				zap.String("by", desc.Name))
			r.remove(prev)
			delete(r.byName, prev.Name)
		}
		r.byVerbTgt[key] = d
	}
	r.byName[desc.Name] = d
	r.ordered = append(r.ordered, d)
	return nil
}

// remove drops a descriptor from the ordered list and the trigger index.
func (r *PrimitiveRegistry) remove(d *PrimitiveDescriptor) {
	for i, cand := range r.ordered {
		if cand == d {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	if d.Target != "" {
		key := d.Verb + ":" + d.Target
		if r.byVerbTgt[key] == d {
			delete(r.byVerbTgt, key)
		}
	}
}

// Get looks a primitive up by name.
func (r *PrimitiveRegistry) Get(name string) (PrimitiveDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	if !ok {
		return PrimitiveDescriptor{}, false
	}
	return *d, true
}

// FindByVerb returns every primitive triggered by the verb, in
// registration order.
func (r *PrimitiveRegistry) FindByVerb(verb string) []PrimitiveDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PrimitiveDescriptor
	for _, d := range r.ordered {
		if d.Verb == verb {
			out = append(out, *d)
		}
	}
	return out
}

// FindByVerbAndTarget returns the primitive claiming the exact
// (verb, target) pair, if any.
func (r *PrimitiveRegistry) FindByVerbAndTarget(verb, target string) (PrimitiveDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byVerbTgt[verb+":"+target]
	if !ok {
		return PrimitiveDescriptor{}, false
	}
	return *d, true
}

// FindByVerbAndAdditions returns the primitive on the verb whose required
// additions are a non-empty subset of the supplied ones. When several
// qualify, the one requiring the most additions wins (most specific);
// remaining ties fall back to registration order.
func (r *PrimitiveRegistry) FindByVerbAndAdditions(verb string, additions []string) (PrimitiveDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByAdditions(verb, additions)
}

func (r *PrimitiveRegistry) findByAdditions(verb string, additions []string) (PrimitiveDescriptor, bool) {
	have := make(map[string]bool, len(additions))
	for _, a := range additions {
		have[a] = true
	}
	var best *PrimitiveDescriptor
	for _, d := range r.ordered {
		if d.Verb != verb || len(d.RequiredAdditions) == 0 {
			continue
		}
		ok := true
		for _, req := range d.RequiredAdditions {
			if !have[req] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if best == nil || len(d.RequiredAdditions) > len(best.RequiredAdditions) {
			best = d
		}
	}
	if best == nil {
		return PrimitiveDescriptor{}, false
	}
	return *best, true
}

// FindBestMatch resolves an intent's (verb, target, additions) to a
// primitive: exact (verb, target) first, then the addition route, then a
// default descriptor for the verb with no target and no required
// additions.
func (r *PrimitiveRegistry) FindBestMatch(verb, target string, additions []string) (PrimitiveDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target != "" {
		if d, ok := r.byVerbTgt[verb+":"+target]; ok {
			return *d, true
		}
	}
	if d, ok := r.findByAdditions(verb, additions); ok {
		return d, true
	}
	for _, d := range r.ordered {
		if d.Verb == verb && d.Target == "" && len(d.RequiredAdditions) == 0 {
			return *d, true
		}
	}
	return PrimitiveDescriptor{}, false
}
