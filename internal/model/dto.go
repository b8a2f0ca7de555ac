package model

import "encoding/xml"

// CityWithoutPointsOfInterestDto is the summary view of a city
type CityWithoutPointsOfInterestDto struct {
	XMLName     xml.Name `json:"-" xml:"city"`
	ID          int      `json:"id" xml:"id"`
	Name        string   `json:"name" xml:"name"`
	Description *string  `json:"description" xml:"description,omitempty"`
}

// CityDto is the full view of a city including its points of interest
type CityDto struct {
	XMLName                  xml.Name             `json:"-" xml:"city"`
	ID                       int                  `json:"id" xml:"id"`
	Name                     string               `json:"name" xml:"name"`
	Description              *string              `json:"description" xml:"description,omitempty"`
	NumberOfPointsOfInterest int                  `json:"numberOfPointsOfInterest" xml:"numberOfPointsOfInterest"`
	PointsOfInterest         []PointOfInterestDto `json:"pointsOfInterest" xml:"pointsOfInterest>pointOfInterest"`
}

// PointOfInterestDto is the wire view of a point of interest
type PointOfInterestDto struct {
	XMLName     xml.Name `json:"-" xml:"pointOfInterest"`
	ID          int      `json:"id" xml:"id"`
	Name        string   `json:"name" xml:"name"`
	Description *string  `json:"description" xml:"description,omitempty"`
}

// PointOfInterestForCreationDto is the payload accepted when creating a point of interest
type PointOfInterestForCreationDto struct {
	XMLName     xml.Name `json:"-" xml:"pointOfInterest"`
	Name        string   `json:"name" xml:"name" validate:"notblank,min=1,max=50"`
	Description *string  `json:"description" xml:"description,omitempty" validate:"omitempty,max=200"`
}

// PointOfInterestForUpdateDto is the payload accepted when replacing or patching a point of interest
type PointOfInterestForUpdateDto struct {
	XMLName     xml.Name `json:"-" xml:"pointOfInterest"`
	Name        string   `json:"name" xml:"name" validate:"notblank,min=1,max=50"`
	Description *string  `json:"description" xml:"description,omitempty" validate:"omitempty,max=200"`
}

// PaginationMetadata describes the page returned by a city listing
type PaginationMetadata struct {
	TotalItemCount int `json:"totalItemCount"`
	PageSize       int `json:"pageSize"`
	CurrentPage    int `json:"currentPage"`
	TotalPages     int `json:"totalPages"`
}

// CityPage is one page of a city listing
type CityPage struct {
	Cities     []CityWithoutPointsOfInterestDto
	Pagination PaginationMetadata
}
