package graph

import (
	"strconv"
	"time"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
)

// FromDataset builds the graph of one dataset. When container is set the
// dataset is linked to it with dcterms:isPartOf.
func FromDataset(d *catalogs.Dataset, container string) *Graph {
	g := New()
	s := IRI(d.URI)

	g.Add(s, RDFType, DCATDataset)
	g.Add(s, DCTIdentifier, Literal(d.ID.String()))
	g.Add(s, DCTTitle, Literal(d.Title))
	g.Add(s, DCTDescription, Literal(d.Description))
	for _, k := range d.Keywords {
		g.Add(s, DCATKeyword, Literal(k))
	}
	for _, a := range d.Creators {
		g.Add(s, DCTCreator, addAgent(g, a))
	}
	for _, a := range d.Publishers {
		g.Add(s, DCTPublisher, addAgent(g, a))
	}
	if !d.ContactPoint.IsZero() {
		g.Add(s, DCATContactPoint, addContactPoint(g, d.ContactPoint))
	}

	addIRIs(g, s, DCATTheme, d.Themes)
	addIRI(g, s, DCTLicense, d.License)
	addIRI(g, s, DCTAccessRights, d.AccessRights)
	addIRIs(g, s, DCATAPApplicableLegislation, d.ApplicableLegislation)
	addIRI(g, s, DCTAccrualPeriodicity, d.Frequency)
	addIRI(g, s, ADMSStatus, d.Status)
	addIRIs(g, s, HealthTheme, d.HealthThemes)
	addIRIs(g, s, FOAFPage, d.Documentation)
	addIRIs(g, s, DCTConformsTo, d.ConformsTo)
	addIRI(g, s, DCATLandingPage, d.LandingPage)
	for _, p := range d.Purposes {
		g.Add(s, DPVHasPurpose, Literal(p))
	}
	for _, l := range d.LegalBasis {
		g.Add(s, DPVHasLegalBasis, Literal(l))
	}

	addCount(g, s, HealthMinTypicalAge, d.MinimumTypicalAge)
	addCount(g, s, HealthMaxTypicalAge, d.MaximumTypicalAge)
	addCount(g, s, HealthNumberOfRecords, d.NumberOfRecords)
	addCount(g, s, HealthNumberOfUniqueIndividuals, d.NumberOfUniqueIndividuals)
	if d.PopulationCoverage != "" {
		g.Add(s, HealthPopulationCoverage, Literal(d.PopulationCoverage))
	}

	addTime(g, s, DCTIssued, d.Issued)
	addTime(g, s, DCTModified, d.Modified)

	if container != "" {
		g.Add(s, DCTIsPartOf, IRI(container))
	}
	return g
}

// FromCatalog builds the catalog graph including every dataset graph.
func FromCatalog(c *catalogs.Catalog, datasets []*catalogs.Dataset) *Graph {
	g := New()
	s := IRI(c.URI)

	g.Add(s, RDFType, DCATCatalog)
	g.Add(s, DCTTitle, Literal(c.Title))
	g.Add(s, DCTDescription, Literal(c.Description))
	for _, a := range c.Publishers {
		g.Add(s, DCTPublisher, addAgent(g, a))
	}
	addIRI(g, s, FOAFHomepage, c.Homepage)

	byID := make(map[catalogs.DatasetID]*catalogs.Dataset, len(datasets))
	for _, d := range datasets {
		byID[d.ID] = d
	}
	for _, id := range c.Datasets {
		if d, ok := byID[id]; ok {
			g.Add(s, DCATDatasetProp, IRI(d.URI))
		}
	}
	for _, id := range c.Datasets {
		if d, ok := byID[id]; ok {
			g.Merge(FromDataset(d, c.URI))
		}
	}
	return g
}

func addAgent(g *Graph, a catalogs.Agent) Term {
	node := g.Blank()
	g.Add(node, RDFType, FOAFAgent)
	g.Add(node, FOAFName, Literal(a.Name))
	g.Add(node, DCTIdentifier, Literal(a.Identifier))
	addIRI(g, node, FOAFMbox, a.Email)
	addIRI(g, node, FOAFHomepage, a.Homepage)
	return node
}

func addContactPoint(g *Graph, c catalogs.ContactPoint) Term {
	node := g.Blank()
	g.Add(node, RDFType, VCardKind)
	if c.FullName != "" {
		g.Add(node, VCardFN, Literal(c.FullName))
	}
	addIRI(g, node, VCardHasEmail, c.Email)
	addIRI(g, node, VCardHasUID, c.UID)
	addIRI(g, node, VCardHasURL, c.URL)
	return node
}

func addIRI(g *Graph, s, p Term, iri string) {
	if iri != "" {
		g.Add(s, p, IRI(iri))
	}
}

func addIRIs(g *Graph, s, p Term, iris []string) {
	for _, iri := range iris {
		addIRI(g, s, p, iri)
	}
}

func addCount(g *Graph, s, p Term, n *int) {
	if n != nil {
		g.Add(s, p, Typed(strconv.Itoa(*n), XSDNonNegativeInteger))
	}
}

func addTime(g *Graph, s, p Term, t time.Time) {
	if !t.IsZero() {
		g.Add(s, p, Typed(t.UTC().Format(time.RFC3339), XSDDateTime))
	}
}
