package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Serializer writes a graph in one concrete syntax.
type Serializer interface {
	Format() string
	MediaType() string
	Serialize(w io.Writer, g *Graph) error
}

// Turtle is a subset of N3, so n3 is served by the Turtle encoder.
var serializers = map[string]Serializer{
	"turtle":   Turtle{},
	"ttl":      Turtle{},
	"n3":       Turtle{},
	"nt":       NTriples{},
	"nt11":     NTriples{},
	"ntriples": NTriples{},
	"nquads":   NQuads{},
	"nq":       NQuads{},
	"json-ld":  JSONLD{},
	"jsonld":   JSONLD{},
}

// Lookup returns the serializer for a format name.
func Lookup(format string) (Serializer, error) {
	s, ok := serializers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, errors.NewConfigurationError("format", fmt.Sprintf("unsupported format %q, choose one of %s", format, strings.Join(Formats(), ", ")), nil)
	}
	return s, nil
}

// Formats returns the canonical format names.
func Formats() []string {
	return []string{"turtle", "nt", "nquads", "json-ld"}
}

// Turtle writes Turtle with the standard prefixes.
type Turtle struct{}

// Format implements Serializer.
func (Turtle) Format() string { return "turtle" }

// MediaType implements Serializer.
func (Turtle) MediaType() string { return "text/turtle" }

// Serialize implements Serializer.
func (Turtle) Serialize(w io.Writer, g *Graph) error {
	return encodeTriples(w, g, rdf.Turtle)
}

// NTriples writes one triple per line with full IRIs.
type NTriples struct{}

// Format implements Serializer.
func (NTriples) Format() string { return "nt" }

// MediaType implements Serializer.
func (NTriples) MediaType() string { return "application/n-triples" }

// Serialize implements Serializer.
func (NTriples) Serialize(w io.Writer, g *Graph) error {
	return encodeTriples(w, g, rdf.NTriples)
}

func encodeTriples(w io.Writer, g *Graph, format rdf.Format) error {
	triples, err := rdfTriples(g)
	if err != nil {
		return err
	}
	enc := rdf.NewTripleEncoder(w, format)
	if format == rdf.Turtle {
		enc.Namespaces = make(map[string]string, len(Prefixes))
		for _, p := range Prefixes {
			enc.Namespaces[p.Namespace] = p.Name
		}
	}
	if err := enc.EncodeAll(triples); err != nil {
		return fmt.Errorf("encoding triples: %w", err)
	}
	return enc.Close()
}

// NQuads writes the graph as the default graph of an N-Quads document.
type NQuads struct{}

// Format implements Serializer.
func (NQuads) Format() string { return "nquads" }

// MediaType implements Serializer.
func (NQuads) MediaType() string { return "application/n-quads" }

// Serialize implements Serializer.
func (NQuads) Serialize(w io.Writer, g *Graph) error {
	ds, err := rdfDataset(g)
	if err != nil {
		return err
	}
	out, err := (&ld.NQuadRDFSerializer{}).Serialize(ds)
	if err != nil {
		return fmt.Errorf("encoding n-quads: %w", err)
	}
	s, ok := out.(string)
	if !ok {
		return fmt.Errorf("n-quads serializer returned %T", out)
	}
	_, err = io.WriteString(w, s)
	return err
}

// JSONLD writes JSON-LD compacted against the standard prefixes.
type JSONLD struct{}

// Format implements Serializer.
func (JSONLD) Format() string { return "json-ld" }

// MediaType implements Serializer.
func (JSONLD) MediaType() string { return "application/ld+json" }

// Serialize implements Serializer.
func (JSONLD) Serialize(w io.Writer, g *Graph) error {
	ds, err := rdfDataset(g)
	if err != nil {
		return err
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	expanded, err := proc.FromRDF(ds, opts)
	if err != nil {
		return fmt.Errorf("converting graph to json-ld: %w", err)
	}

	context := make(map[string]any, len(Prefixes))
	for _, p := range Prefixes {
		context[p.Name] = p.Namespace
	}
	doc, err := proc.Compact(expanded, map[string]any{"@context": context}, opts)
	if err != nil {
		return fmt.Errorf("compacting json-ld: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// rdfTriples converts the graph for the Turtle and N-Triples encoders,
// grouping triples by subject so the Turtle encoder can abbreviate them.
func rdfTriples(g *Graph) ([]rdf.Triple, error) {
	bySubject := make(map[Term][]Triple)
	for _, t := range g.triples {
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	out := make([]rdf.Triple, 0, len(g.triples))
	for _, s := range g.Subjects() {
		for _, t := range bySubject[s] {
			rt, err := rdfTriple(t)
			if err != nil {
				return nil, err
			}
			out = append(out, rt)
		}
	}
	return out, nil
}

func rdfTriple(t Triple) (rdf.Triple, error) {
	s, err := rdfTerm(t.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}
	subj, ok := s.(rdf.Subject)
	if !ok {
		return rdf.Triple{}, errors.NewValidationError("subject", t.Subject.Value, "literal cannot be a subject")
	}
	pred, err := rdf.NewIRI(t.Predicate.Value)
	if err != nil {
		return rdf.Triple{}, errors.NewValidationError("predicate", t.Predicate.Value, err.Error())
	}
	o, err := rdfTerm(t.Object)
	if err != nil {
		return rdf.Triple{}, err
	}
	obj, ok := o.(rdf.Object)
	if !ok {
		return rdf.Triple{}, errors.NewValidationError("object", t.Object.Value, "not an RDF object")
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}, nil
}

func rdfTerm(t Term) (rdf.Term, error) {
	var (
		term rdf.Term
		err  error
	)
	switch {
	case t.Kind == KindIRI:
		term, err = rdf.NewIRI(t.Value)
	case t.Kind == KindBlank:
		term, err = rdf.NewBlank(t.Value)
	case t.Lang != "":
		term, err = rdf.NewLangLiteral(t.Value, t.Lang)
	case t.Datatype != "":
		var dt rdf.IRI
		if dt, err = rdf.NewIRI(t.Datatype); err == nil {
			term = rdf.NewTypedLiteral(t.Value, dt)
		}
	default:
		term, err = rdf.NewLiteral(t.Value)
	}
	if err != nil {
		return nil, errors.NewValidationError("term", t.Value, err.Error())
	}
	return term, nil
}

// rdfDataset converts the graph for the JSON-LD processor. Terms are checked
// with the same rules the triple encoders apply.
func rdfDataset(g *Graph) (*ld.RDFDataset, error) {
	if _, err := rdfTriples(g); err != nil {
		return nil, err
	}
	quads := make([]*ld.Quad, 0, len(g.triples))
	for _, t := range g.triples {
		quads = append(quads, ld.NewQuad(ldNode(t.Subject), ldNode(t.Predicate), ldNode(t.Object), "@default"))
	}
	ds := ld.NewRDFDataset()
	ds.Graphs["@default"] = quads
	return ds, nil
}

func ldNode(t Term) ld.Node {
	switch {
	case t.Kind == KindIRI:
		return ld.NewIRI(t.Value)
	case t.Kind == KindBlank:
		return ld.NewBlankNode("_:" + t.Value)
	case t.Lang != "":
		return ld.NewLiteral(t.Value, NSRDF+"langString", t.Lang)
	case t.Datatype != "":
		return ld.NewLiteral(t.Value, t.Datatype, "")
	default:
		return ld.NewLiteral(t.Value, NSXSD+"string", "")
	}
}
