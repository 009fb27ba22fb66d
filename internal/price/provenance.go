package price

// Provenance is the trust tier of a published series.
type Provenance string

const (
	// ProvenanceScraped marks prices parsed from the live HTML page.
	ProvenanceScraped Provenance = "scraped"
	// ProvenanceAPI marks prices decoded from the market-data API.
	ProvenanceAPI Provenance = "api"
	// ProvenanceSynthetic marks fabricated estimates.
	ProvenanceSynthetic Provenance = "synthetic"
)

// Label returns the display label shown next to the prices.
func (p Provenance) Label() string {
	switch p {
	case ProvenanceScraped:
		return "Web"
	case ProvenanceAPI:
		return "API"
	default:
		return "Estimado"
	}
}

// IsLive reports whether the prices came from a real source.
func (p Provenance) IsLive() bool {
	return p == ProvenanceScraped || p == ProvenanceAPI
}
