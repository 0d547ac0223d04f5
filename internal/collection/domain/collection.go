package domain

import "time"

// Collection groups items under one owner. Public collections are readable
// by any authenticated user; private ones only by their owner.
type Collection struct {
	ID           string
	Name         string
	Description  string
	Owner        string
	Public       bool
	Tags         []string
	CreatedDate  time.Time
	ModifiedDate time.Time
}

// VisibleTo reports whether userID may read the collection.
func (c Collection) VisibleTo(userID string) bool {
	return c.Public || c.Owner == userID
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Item is one entry in a collection. Location is optional.
type Item struct {
	ID           string
	Name         string
	Description  string
	Location     *GeoPoint
	Collection   string
	Owner        string
	CreatedDate  time.Time
	ModifiedDate time.Time
}
