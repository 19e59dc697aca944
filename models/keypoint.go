package models

// KeyPoint is embedded in its tour document. Order is the sequence
// position within the tour and must be unique per tour.
type KeyPoint struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description" json:"description"`
	ImageUrl    string  `bson:"imageUrl" json:"imageUrl"`
	Latitude    float64 `bson:"latitude" json:"latitude"`
	Longitude   float64 `bson:"longitude" json:"longitude"`
	Order       int     `bson:"order" json:"order"`
}
