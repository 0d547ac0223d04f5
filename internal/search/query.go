package search

// Predicate is one node of a store-agnostic query tree. Builders produce the
// tree, a store adapter compiles it to its native query language; handlers
// never concatenate raw query fragments.
type Predicate interface {
	isPredicate()
}

// FieldMatch requires exact equality on a single field.
type FieldMatch struct {
	Field string
	Value any
}

// Regex requires the field to match the pattern, optionally ignoring case.
type Regex struct {
	Field           string
	Pattern         string
	CaseInsensitive bool
}

// GeoNear requires a location field to lie within MaxDistance of the given
// point. Distance units are the store's; the Postgres compiler emits meters.
type GeoNear struct {
	Field       string
	Lat         float64
	Lng         float64
	MaxDistance float64
}

// Or is satisfied when any branch is.
type Or struct {
	Preds []Predicate
}

// And is satisfied when every branch is.
type And struct {
	Preds []Predicate
}

// MatchNone matches zero records. Malformed identifier filters degrade to
// this instead of failing the request.
type MatchNone struct{}

func (FieldMatch) isPredicate() {}
func (Regex) isPredicate()      {}
func (GeoNear) isPredicate()    {}
func (Or) isPredicate()         {}
func (And) isPredicate()        {}
func (MatchNone) isPredicate()  {}

// SortField is one ORDER BY entry. Direction is uniform across a sort spec;
// Desc is set on every entry or none.
type SortField struct {
	Field string
	Desc  bool
}
