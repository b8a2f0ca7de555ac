package model

// ToCityWithoutPointsOfInterestDto projects a city to its summary view.
func ToCityWithoutPointsOfInterestDto(c City) CityWithoutPointsOfInterestDto {
	return CityWithoutPointsOfInterestDto{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}

// ToCityDto projects a city and its loaded points of interest.
func ToCityDto(c City) CityDto {
	pois := ToPointOfInterestDtos(c.PointsOfInterest)
	return CityDto{
		ID:                       c.ID,
		Name:                     c.Name,
		Description:              c.Description,
		NumberOfPointsOfInterest: len(pois),
		PointsOfInterest:         pois,
	}
}

func ToPointOfInterestDto(p PointOfInterest) PointOfInterestDto {
	return PointOfInterestDto{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}

// ToPointOfInterestDtos never returns nil so empty collections encode as [].
func ToPointOfInterestDtos(pois []PointOfInterest) []PointOfInterestDto {
	dtos := make([]PointOfInterestDto, 0, len(pois))
	for _, p := range pois {
		dtos = append(dtos, ToPointOfInterestDto(p))
	}
	return dtos
}

// ToPointOfInterestForUpdateDto builds the mutable copy a patch is applied to.
func ToPointOfInterestForUpdateDto(p PointOfInterest) PointOfInterestForUpdateDto {
	return PointOfInterestForUpdateDto{
		Name:        p.Name,
		Description: p.Description,
	}
}

// NewPointOfInterest builds an unsaved entity from a creation payload.
func NewPointOfInterest(cityID int, dto PointOfInterestForCreationDto) PointOfInterest {
	return PointOfInterest{
		CityID:      cityID,
		Name:        dto.Name,
		Description: dto.Description,
	}
}

// ApplyUpdate overwrites the mutable fields of p with the update payload.
func ApplyUpdate(dto PointOfInterestForUpdateDto, p *PointOfInterest) {
	p.Name = dto.Name
	p.Description = dto.Description
}
