package model

import "math"

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 20
	// MaxPageNumber keeps Offset within int range at any page size.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Normalize fills defaults and clamps the page size to MaxPageSize and the
// page number to MaxPageNumber.
func (f CityFilter) Normalize() CityFilter {
	if f.PageNumber < 1 {
		f.PageNumber = DefaultPageNumber
	}
	if f.PageNumber > MaxPageNumber {
		f.PageNumber = MaxPageNumber
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Offset is the number of rows skipped before the current page.
func (f CityFilter) Offset() int {
	return f.PageSize * (f.PageNumber - 1)
}

// NewPaginationMetadata computes page counts for a listing.
func NewPaginationMetadata(totalItemCount, pageSize, currentPage int) PaginationMetadata {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItemCount + pageSize - 1) / pageSize
	}
	return PaginationMetadata{
		TotalItemCount: totalItemCount,
		PageSize:       pageSize,
		CurrentPage:    currentPage,
		TotalPages:     totalPages,
	}
}
