// Package forms resolves the supplemental form payload of a project into
// a flat set of typed fields, according to a field definition loaded once
// per run. Payloads are untrusted: nested values are walked iteratively
// under explicit depth and size caps, and anything malformed falls back
// or is omitted with a warning. The project itself is never modified.
package forms

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// Resolver resolves supplemental payloads against a definition.
type Resolver struct {
	def      *Definition
	maxDepth int
	maxNodes int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLimits overrides the traversal caps.
func WithLimits(maxDepth, maxNodes int) Option {
	return func(r *Resolver) {
		r.maxDepth = maxDepth
		r.maxNodes = maxNodes
	}
}

// New creates a resolver for a validated definition.
func New(def *Definition, opts ...Option) *Resolver {
	r := &Resolver{
		def:      def,
		maxDepth: constants.MaxFormDepth,
		maxNodes: constants.MaxFormNodes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the field map of a project. For every defined field the
// supplemental value is used when present and well-formed for the declared
// shape, otherwise the fallback, otherwise the field is omitted. Rejected
// values are reported as ResolutionErrors.
func (r *Resolver) Resolve(p *sources.Project) (Fields, []error) {
	out := make(Fields, len(r.def.Fields))
	var warnings []error

	for _, f := range r.def.Fields {
		raw, found := lookup(p.Supplemental, f.Key)
		if found {
			v, err := r.resolveValue(f, raw)
			if err == nil {
				out[f.Name] = v
				continue
			}
			warnings = append(warnings, errors.NewResolutionError(p.ID, f.Name, err.Error()))
		}
		if f.fallback != nil {
			out[f.Name] = f.fallback
		}
	}
	return out, warnings
}

func (r *Resolver) resolveValue(f Field, raw any) (Value, error) {
	if s, ok := raw.(string); ok && f.Shape.structured() {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			var decoded any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
				return nil, fmt.Errorf("malformed structured value: %v", err)
			}
			raw = decoded
		}
	}
	if err := r.checkBounds(raw); err != nil {
		return nil, err
	}
	return coerce(f.Shape, raw)
}

// checkBounds walks v with an explicit stack and rejects values nested
// deeper than maxDepth or containing more than maxNodes nodes.
func (r *Resolver) checkBounds(v any) error {
	type frame struct {
		value any
		depth int
	}
	stack := []frame{{v, 0}}
	nodes := 0
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nodes++
		if nodes > r.maxNodes {
			return fmt.Errorf("value has more than %d nodes", r.maxNodes)
		}
		if top.depth > r.maxDepth {
			return fmt.Errorf("value nested deeper than %d levels", r.maxDepth)
		}
		switch c := top.value.(type) {
		case map[string]any:
			for _, child := range c {
				stack = append(stack, frame{child, top.depth + 1})
			}
		case []any:
			for _, child := range c {
				stack = append(stack, frame{child, top.depth + 1})
			}
		}
	}
	return nil
}

// lookup follows a dotted key through nested objects.
func lookup(payload map[string]any, key string) (any, bool) {
	if payload == nil {
		return nil, false
	}
	if v, ok := payload[key]; ok {
		return v, v != nil
	}
	var cur any = payload
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}
