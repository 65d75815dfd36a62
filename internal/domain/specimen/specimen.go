// Package specimen defines the read-only reference specimen record consumed
// by the search aggregator.
package specimen

// Scope selects which indexed attribute a search targets.
type Scope string

const (
	// ScopeAll fans the query out across every indexed attribute.
	ScopeAll Scope = "all"
	// ScopeName targets the display-name index.
	ScopeName Scope = "name"
	// ScopeCollectors targets the collector-list index.
	ScopeCollectors Scope = "collectors"
	// ScopeCountry targets the country index.
	ScopeCountry Scope = "country"
)

// ParseScope maps a request string to a Scope. Empty defaults to ScopeAll.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case "":
		return ScopeAll, true
	case ScopeAll, ScopeName, ScopeCollectors, ScopeCountry:
		return Scope(s), true
	default:
		return "", false
	}
}

// Record is an externally owned catalog row. The core never mutates it.
type Record struct {
	id            string
	fullName      string
	collectors    string
	country       string
	family        string
	genus         string
	species       string
	locality      string
	catalogNumber string
	imageURL      string
}

// Reconstruct creates a Record from stored attributes (storage hydration).
func Reconstruct(
	id, fullName, collectors, country, family, genus, species,
	locality, catalogNumber, imageURL string,
) Record {
	return Record{
		id:            id,
		fullName:      fullName,
		collectors:    collectors,
		country:       country,
		family:        family,
		genus:         genus,
		species:       species,
		locality:      locality,
		catalogNumber: catalogNumber,
		imageURL:      imageURL,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// FullName returns the taxonomic display name.
func (r *Record) FullName() string { return r.fullName }

// Collectors returns the collector list.
func (r *Record) Collectors() string { return r.collectors }

// Country returns the collection country.
func (r *Record) Country() string { return r.country }

// Family returns the taxonomic family.
func (r *Record) Family() string { return r.family }

// Genus returns the taxonomic genus.
func (r *Record) Genus() string { return r.genus }

// Species returns the taxonomic species.
func (r *Record) Species() string { return r.species }

// Locality returns the collection locality name.
func (r *Record) Locality() string { return r.locality }

// CatalogNumber returns the herbarium catalog number.
func (r *Record) CatalogNumber() string { return r.catalogNumber }

// ImageURL returns the catalog scan URL.
func (r *Record) ImageURL() string { return r.imageURL }
