package models

import "time"

type KeyPointDto struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageUrl    string  `json:"imageUrl"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Order       int     `json:"order"`
}

type TourDto struct {
	ID             string         `json:"id"`
	AuthorID       int64          `json:"authorId"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Difficulty     TourDifficulty `json:"difficulty"`
	Status         TourStatus     `json:"status"`
	Price          float64        `json:"price"`
	Tags           []string       `json:"tags"`
	KeyPointsCount int            `json:"keyPointsCount"`
	StartPoint     *KeyPointDto   `json:"startPoint"`
	EndPoint       *KeyPointDto   `json:"endPoint"`
	KeyPoints      []KeyPointDto  `json:"keyPoints,omitempty"`
	DurationHours  float64        `json:"durationHours"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func MapToKeyPointDto(kp *KeyPoint) *KeyPointDto {
	if kp == nil {
		return nil
	}
	return &KeyPointDto{
		Name:        kp.Name,
		Description: kp.Description,
		ImageUrl:    kp.ImageUrl,
		Latitude:    kp.Latitude,
		Longitude:   kp.Longitude,
		Order:       kp.Order,
	}
}

// MapToTourDto is the full projection: every key point plus the derived
// start and end points.
func MapToTourDto(tour *Tour) *TourDto {
	dto := MapToRedactedTourDto(tour)
	dto.EndPoint = MapToKeyPointDto(tour.EndPoint())
	dto.KeyPoints = make([]KeyPointDto, 0, len(tour.KeyPoints))
	for i := range tour.KeyPoints {
		dto.KeyPoints = append(dto.KeyPoints, *MapToKeyPointDto(&tour.KeyPoints[i]))
	}
	return dto
}

// MapToRedactedTourDto hides everything a non-owner without a purchase may
// not see: only the key point count and the start point are exposed, the
// end point and the key point list are withheld.
func MapToRedactedTourDto(tour *Tour) *TourDto {
	return &TourDto{
		ID:             tour.ID.Hex(),
		AuthorID:       tour.AuthorID,
		Name:           tour.Name,
		Description:    tour.Description,
		Difficulty:     tour.Difficulty,
		Status:         tour.Status,
		Price:          tour.Price,
		Tags:           tour.Tags,
		KeyPointsCount: len(tour.KeyPoints),
		StartPoint:     MapToKeyPointDto(tour.StartPoint()),
		EndPoint:       nil,
		DurationHours:  tour.DurationHours,
		CreatedAt:      tour.CreatedAt,
	}
}
