package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/myhoard/backend/internal/common/constants"
	commoncrypto "github.com/myhoard/backend/internal/common/crypto"
)

// BuildCollectionQuery translates collection listing parameters into a
// predicate tree. The visibility clause is always present: a caller sees a
// collection only when they own it or it is public. A malformed owner filter
// degrades to MatchNone rather than widening the result set.
func BuildCollectionQuery(params url.Values, currentUserID string) Predicate {
	preds := []Predicate{
		Or{Preds: []Predicate{
			FieldMatch{Field: "owner", Value: currentUserID},
			FieldMatch{Field: "public", Value: true},
		}},
	}

	if name := params.Get("name"); name != "" {
		preds = append(preds, Regex{Field: "name", Pattern: name, CaseInsensitive: true})
	}
	if description := params.Get("description"); description != "" {
		preds = append(preds, Regex{Field: "description", Pattern: description, CaseInsensitive: true})
	}

	if owner := params.Get("owner"); owner != "" {
		if commoncrypto.IsIdentifierShaped(owner) {
			preds = append(preds, FieldMatch{Field: "owner", Value: owner})
		} else {
			preds = append(preds, MatchNone{})
		}
	}

	return And{Preds: preds}
}

// BuildItemQuery translates item listing parameters into a predicate tree
// scoped to one collection. The geo parameter is "lat,lng"; max_range
// overrides the default radius in meters. Malformed geo values are ignored.
func BuildItemQuery(params url.Values, collectionID string) Predicate {
	preds := []Predicate{
		FieldMatch{Field: "collection", Value: collectionID},
	}

	if name := params.Get("name"); name != "" {
		preds = append(preds, Regex{Field: "name", Pattern: name, CaseInsensitive: true})
	}
	if description := params.Get("description"); description != "" {
		preds = append(preds, Regex{Field: "description", Pattern: description, CaseInsensitive: true})
	}

	if geo := params.Get("geo"); geo != "" {
		if lat, lng, ok := parseGeo(geo); ok {
			maxRange := float64(constants.DefaultGeoMaxRange)
			if raw := params.Get("max_range"); raw != "" {
				if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
					maxRange = parsed
				}
			}
			preds = append(preds, GeoNear{Field: "location", Lat: lat, Lng: lng, MaxDistance: maxRange})
		}
	}

	return And{Preds: preds}
}

// BuildSortSpec reads repeated sort_by parameters into a sort spec. Sortable
// text fields are redirected to their lowercased shadow columns so ordering
// is case-insensitive. sort_direction applies to every field; ascending is
// the default and unknown values fall back to it.
func BuildSortSpec(params url.Values) []SortField {
	fields := params["sort_by"]
	if len(fields) == 0 {
		return nil
	}

	desc := strings.EqualFold(params.Get("sort_direction"), "desc")

	spec := make([]SortField, 0, len(fields))
	for _, field := range fields {
		spec = append(spec, SortField{Field: sortColumn(field), Desc: desc})
	}
	return spec
}

func sortColumn(field string) string {
	switch field {
	case "name", "description":
		return field + "_lower"
	default:
		return field
	}
}

func parseGeo(raw string) (lat, lng float64, ok bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
