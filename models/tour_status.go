package models

type TourStatus string

const (
	Draft     TourStatus = "Draft"
	Published TourStatus = "Published"
	Archived  TourStatus = "Archived"
)

type TourDifficulty string

const (
	Easy   TourDifficulty = "Easy"
	Medium TourDifficulty = "Medium"
	Hard   TourDifficulty = "Hard"
)
