package model

// City represents a city in the database
type City struct {
	ID          int     `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
	// PointsOfInterest is only populated when explicitly requested
	PointsOfInterest []PointOfInterest `db:"-"`
}

// PointOfInterest represents a point of interest owned by a city
type PointOfInterest struct {
	ID          int     `db:"id"`
	CityID      int     `db:"city_id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
}

// CityFilter narrows a city listing
type CityFilter struct {
	// Name matches the city name exactly
	Name string
	// SearchQuery matches name or description case-insensitively
	SearchQuery string
	PageNumber  int
	PageSize    int
}
