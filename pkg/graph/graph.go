// Package graph holds a syntax-independent RDF graph and the serializers
// that write it as Turtle, N-Triples, N-Quads or JSON-LD. Datasets and
// catalogs are turned into graphs here; the rest of the pipeline never deals
// with a concrete syntax.
package graph

import (
	"fmt"
	"slices"

	"github.com/knakk/rdf"
)

// Kind is the kind of an RDF term.
type Kind int

// Term kinds.
const (
	KindIRI Kind = iota
	KindBlank
	KindLiteral
)

// Term is an IRI, a blank node or a literal.
type Term struct {
	Kind     Kind
	Value    string
	Datatype string // Full datatype IRI, literals only
	Lang     string // Language tag, literals only
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Literal returns a plain string literal.
func Literal(s string) Term {
	return Term{Kind: KindLiteral, Value: s}
}

// Typed returns a literal with a datatype.
func Typed(s, datatype string) Term {
	return Term{Kind: KindLiteral, Value: s, Datatype: datatype}
}

// LangString returns a language-tagged literal.
func LangString(s, lang string) Term {
	return Term{Kind: KindLiteral, Value: s, Lang: lang}
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// String returns the N-Triples form of the term.
func (t Term) String() string {
	rt, err := rdfTerm(t)
	if err != nil {
		return fmt.Sprintf("%q", t.Value)
	}
	return rt.Serialize(rdf.NTriples)
}

// Triple is one statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Graph is an ordered set of triples. Insertion order is kept so that
// serializations are stable across runs.
type Graph struct {
	triples []Triple
	seen    map[Triple]struct{}
	blanks  int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{seen: make(map[Triple]struct{})}
}

// Add adds a triple. Duplicates are ignored.
func (g *Graph) Add(s, p, o Term) {
	t := Triple{s, p, o}
	if _, dup := g.seen[t]; dup {
		return
	}
	g.seen[t] = struct{}{}
	g.triples = append(g.triples, t)
}

// Blank allocates a fresh blank node.
func (g *Graph) Blank() Term {
	g.blanks++
	return Term{Kind: KindBlank, Value: fmt.Sprintf("b%d", g.blanks)}
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns a copy of the triples in insertion order.
func (g *Graph) Triples() []Triple {
	return slices.Clone(g.triples)
}

// Subjects returns the distinct subjects in first-seen order.
func (g *Graph) Subjects() []Term {
	seen := make(map[Term]struct{})
	var out []Term
	for _, t := range g.triples {
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		out = append(out, t.Subject)
	}
	return out
}

// Objects returns the objects of all triples matching subject and predicate.
func (g *Graph) Objects(s, p Term) []Term {
	var out []Term
	for _, t := range g.triples {
		if t.Subject == s && t.Predicate == p {
			out = append(out, t.Object)
		}
	}
	return out
}

// Has reports whether the graph contains the triple.
func (g *Graph) Has(s, p, o Term) bool {
	_, ok := g.seen[Triple{s, p, o}]
	return ok
}

// Merge adds every triple of other, renaming its blank nodes so they do
// not collide with blank nodes of g.
func (g *Graph) Merge(other *Graph) {
	rename := make(map[Term]Term)
	fresh := func(t Term) Term {
		if !t.IsBlank() {
			return t
		}
		if r, ok := rename[t]; ok {
			return r
		}
		r := g.Blank()
		rename[t] = r
		return r
	}
	for _, t := range other.triples {
		g.Add(fresh(t.Subject), t.Predicate, fresh(t.Object))
	}
}

// Rename returns a copy of the graph with every occurrence of the IRI from
// replaced by to, as subject or object.
func (g *Graph) Rename(from, to string) *Graph {
	out := New()
	out.blanks = g.blanks
	swap := func(t Term) Term {
		if t.IsIRI() && t.Value == from {
			return IRI(to)
		}
		return t
	}
	for _, t := range g.triples {
		out.Add(swap(t.Subject), t.Predicate, swap(t.Object))
	}
	return out
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New()
	out.blanks = g.blanks
	for _, t := range g.triples {
		out.Add(t.Subject, t.Predicate, t.Object)
	}
	return out
}
