package graph

// Namespaces.
const (
	NSRDF          = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSXSD          = "http://www.w3.org/2001/XMLSchema#"
	NSDCAT         = "http://www.w3.org/ns/dcat#"
	NSDCTerms      = "http://purl.org/dc/terms/"
	NSFOAF         = "http://xmlns.com/foaf/0.1/"
	NSVCard        = "http://www.w3.org/2006/vcard/ns#"
	NSADMS         = "http://www.w3.org/ns/adms#"
	NSDCATAP       = "http://data.europa.eu/r5r/"
	NSHealthDCATAP = "http://healthdataportal.eu/ns/health#"
	NSDPV          = "https://w3id.org/dpv#"
)

// Prefix binds a short name to a namespace.
type Prefix struct {
	Name      string
	Namespace string
}

// Prefixes are the bindings written by every serializer, in output order.
var Prefixes = []Prefix{
	{"adms", NSADMS},
	{"dcat", NSDCAT},
	{"dcatap", NSDCATAP},
	{"dcterms", NSDCTerms},
	{"dpv", NSDPV},
	{"foaf", NSFOAF},
	{"healthdcatap", NSHealthDCATAP},
	{"rdf", NSRDF},
	{"vcard", NSVCard},
	{"xsd", NSXSD},
}

// Terms used by the catalog profile.
var (
	RDFType = IRI(NSRDF + "type")

	DCATCatalog      = IRI(NSDCAT + "Catalog")
	DCATDataset      = IRI(NSDCAT + "Dataset")
	DCATDatasetProp  = IRI(NSDCAT + "dataset")
	DCATKeyword      = IRI(NSDCAT + "keyword")
	DCATTheme        = IRI(NSDCAT + "theme")
	DCATContactPoint = IRI(NSDCAT + "contactPoint")
	DCATLandingPage  = IRI(NSDCAT + "landingPage")

	DCTIdentifier         = IRI(NSDCTerms + "identifier")
	DCTTitle              = IRI(NSDCTerms + "title")
	DCTDescription        = IRI(NSDCTerms + "description")
	DCTCreator            = IRI(NSDCTerms + "creator")
	DCTPublisher          = IRI(NSDCTerms + "publisher")
	DCTIssued             = IRI(NSDCTerms + "issued")
	DCTModified           = IRI(NSDCTerms + "modified")
	DCTLicense            = IRI(NSDCTerms + "license")
	DCTAccessRights       = IRI(NSDCTerms + "accessRights")
	DCTAccrualPeriodicity = IRI(NSDCTerms + "accrualPeriodicity")
	DCTConformsTo         = IRI(NSDCTerms + "conformsTo")
	DCTIsPartOf           = IRI(NSDCTerms + "isPartOf")

	FOAFAgent    = IRI(NSFOAF + "Agent")
	FOAFName     = IRI(NSFOAF + "name")
	FOAFMbox     = IRI(NSFOAF + "mbox")
	FOAFHomepage = IRI(NSFOAF + "homepage")
	FOAFPage     = IRI(NSFOAF + "page")

	VCardKind     = IRI(NSVCard + "Kind")
	VCardFN       = IRI(NSVCard + "fn")
	VCardHasEmail = IRI(NSVCard + "hasEmail")
	VCardHasUID   = IRI(NSVCard + "hasUID")
	VCardHasURL   = IRI(NSVCard + "hasURL")

	ADMSStatus = IRI(NSADMS + "status")

	DCATAPApplicableLegislation = IRI(NSDCATAP + "applicableLegislation")

	HealthTheme                     = IRI(NSHealthDCATAP + "healthTheme")
	HealthMinTypicalAge             = IRI(NSHealthDCATAP + "minTypicalAge")
	HealthMaxTypicalAge             = IRI(NSHealthDCATAP + "maxTypicalAge")
	HealthNumberOfRecords           = IRI(NSHealthDCATAP + "numberOfRecords")
	HealthNumberOfUniqueIndividuals = IRI(NSHealthDCATAP + "numberOfUniqueIndividuals")
	HealthPopulationCoverage        = IRI(NSHealthDCATAP + "populationCoverage")

	DPVHasPurpose    = IRI(NSDPV + "hasPurpose")
	DPVHasLegalBasis = IRI(NSDPV + "hasLegalBasis")
)

// Datatypes.
const (
	XSDDateTime           = NSXSD + "dateTime"
	XSDNonNegativeInteger = NSXSD + "nonNegativeInteger"
)
