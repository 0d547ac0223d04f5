package search_test

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myhoard/backend/internal/search"
)

func TestBuildCollectionQuery_AlwaysScopesVisibility(t *testing.T) {
	query := search.BuildCollectionQuery(url.Values{}, "user-1")

	and, ok := query.(search.And)
	require.True(t, ok)
	require.Len(t, and.Preds, 1)

	or, ok := and.Preds[0].(search.Or)
	require.True(t, ok)
	require.Len(t, or.Preds, 2)

	assert.Equal(t, search.FieldMatch{Field: "owner", Value: "user-1"}, or.Preds[0])
	assert.Equal(t, search.FieldMatch{Field: "public", Value: true}, or.Preds[1])
}

func TestBuildCollectionQuery_TextFiltersAreCaseInsensitiveRegex(t *testing.T) {
	params := url.Values{}
	params.Set("name", "rocks")
	params.Set("description", "shiny")

	query := search.BuildCollectionQuery(params, "user-1")
	and, ok := query.(search.And)
	require.True(t, ok)
	require.Len(t, and.Preds, 3)

	assert.Equal(t, search.Regex{Field: "name", Pattern: "rocks", CaseInsensitive: true}, and.Preds[1])
	assert.Equal(t, search.Regex{Field: "description", Pattern: "shiny", CaseInsensitive: true}, and.Preds[2])
}

func TestBuildCollectionQuery_OwnerFilter(t *testing.T) {
	owner := uuid.NewString()
	params := url.Values{}
	params.Set("owner", owner)

	query := search.BuildCollectionQuery(params, "user-1")
	and, ok := query.(search.And)
	require.True(t, ok)
	require.Len(t, and.Preds, 2)
	assert.Equal(t, search.FieldMatch{Field: "owner", Value: owner}, and.Preds[1])
}

func TestBuildCollectionQuery_MalformedOwnerMatchesNothing(t *testing.T) {
	params := url.Values{}
	params.Set("owner", "drop table collections")

	query := search.BuildCollectionQuery(params, "user-1")
	and, ok := query.(search.And)
	require.True(t, ok)
	require.Len(t, and.Preds, 2)
	assert.Equal(t, search.MatchNone{}, and.Preds[1])
}

func TestBuildItemQuery_ScopesToCollection(t *testing.T) {
	query := search.BuildItemQuery(url.Values{}, "collection-1")

	and, ok := query.(search.And)
	require.True(t, ok)
	require.Len(t, and.Preds, 1)
	assert.Equal(t, search.FieldMatch{Field: "collection", Value: "collection-1"}, and.Preds[0])
}

func TestBuildItemQuery_GeoDefaultsRadius(t *testing.T) {
	params := url.Values{}
	params.Set("geo", "60.17,24.94")

	query := search.BuildItemQuery(params, "collection-1")
	and, ok := query.(search.And)
	require.True(t, ok)
	require.Len(t, and.Preds, 2)

	geo, ok := and.Preds[1].(search.GeoNear)
	require.True(t, ok)
	assert.Equal(t, "location", geo.Field)
	assert.InDelta(t, 60.17, geo.Lat, 1e-9)
	assert.InDelta(t, 24.94, geo.Lng, 1e-9)
	assert.InDelta(t, 10000, geo.MaxDistance, 1e-9)
}

func TestBuildItemQuery_GeoMaxRangeOverride(t *testing.T) {
	params := url.Values{}
	params.Set("geo", "60.17, 24.94")
	params.Set("max_range", "250")

	query := search.BuildItemQuery(params, "collection-1")
	and := query.(search.And)
	geo, ok := and.Preds[1].(search.GeoNear)
	require.True(t, ok)
	assert.InDelta(t, 250, geo.MaxDistance, 1e-9)
}

func TestBuildItemQuery_MalformedGeoIsIgnored(t *testing.T) {
	for _, raw := range []string{"60.17", "60.17,24.94,5", "north,south", ""} {
		params := url.Values{}
		if raw != "" {
			params.Set("geo", raw)
		}

		query := search.BuildItemQuery(params, "collection-1")
		and, ok := query.(search.And)
		require.True(t, ok)
		assert.Len(t, and.Preds, 1, "geo=%q", raw)
	}
}

func TestBuildSortSpec_Empty(t *testing.T) {
	assert.Nil(t, search.BuildSortSpec(url.Values{}))
}

func TestBuildSortSpec_TextFieldsUseShadowColumns(t *testing.T) {
	params := url.Values{}
	params.Add("sort_by", "name")
	params.Add("sort_by", "created_date")

	spec := search.BuildSortSpec(params)
	require.Len(t, spec, 2)
	assert.Equal(t, search.SortField{Field: "name_lower", Desc: false}, spec[0])
	assert.Equal(t, search.SortField{Field: "created_date", Desc: false}, spec[1])
}

func TestBuildSortSpec_DirectionAppliesToAllFields(t *testing.T) {
	params := url.Values{}
	params.Add("sort_by", "description")
	params.Add("sort_by", "modified_date")
	params.Set("sort_direction", "DESC")

	spec := search.BuildSortSpec(params)
	require.Len(t, spec, 2)
	assert.True(t, spec[0].Desc)
	assert.True(t, spec[1].Desc)
	assert.Equal(t, "description_lower", spec[0].Field)
}

func TestBuildSortSpec_UnknownDirectionFallsBackToAscending(t *testing.T) {
	params := url.Values{}
	params.Add("sort_by", "name")
	params.Set("sort_direction", "sideways")

	spec := search.BuildSortSpec(params)
	require.Len(t, spec, 1)
	assert.False(t, spec[0].Desc)
}
