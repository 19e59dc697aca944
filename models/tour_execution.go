package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExecutionStatus string

const (
	ExecutionActive    ExecutionStatus = "Active"
	ExecutionCompleted ExecutionStatus = "Completed"
	ExecutionAbandoned ExecutionStatus = "Abandoned"
)

func ParseExecutionStatus(statusStr string) (ExecutionStatus, error) {
	switch statusStr {
	case string(ExecutionActive):
		return ExecutionActive, nil
	case string(ExecutionCompleted):
		return ExecutionCompleted, nil
	case string(ExecutionAbandoned):
		return ExecutionAbandoned, nil
	default:
		return "", fmt.Errorf("invalid execution status: %s", statusStr)
	}
}

// CompletedKeyPoint marks one key point of the tour as visited during a
// session. Keyed by the key point's order, recorded at most once per session.
type CompletedKeyPoint struct {
	KeyPointOrder int       `bson:"keyPointOrder" json:"keyPointOrder"`
	CompletedAt   time.Time `bson:"completedAt" json:"completedAt"`
}

type TourExecution struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TouristID          int64               `bson:"touristId" json:"touristId"`
	TourID             primitive.ObjectID  `bson:"tourId" json:"tourId"`
	TourName           string              `bson:"tourName" json:"tourName"`
	Status             ExecutionStatus     `bson:"status" json:"status"`
	StartLatitude      float64             `bson:"startLatitude" json:"startLatitude"`
	StartLongitude     float64             `bson:"startLongitude" json:"startLongitude"`
	CompletedKeyPoints []CompletedKeyPoint `bson:"completedKeyPoints" json:"completedKeyPoints"`
	StartedAt          time.Time           `bson:"startedAt" json:"startedAt"`
	CompletedAt        *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	AbandonedAt        *time.Time          `bson:"abandonedAt,omitempty" json:"abandonedAt,omitempty"`
	LastActivity       time.Time           `bson:"lastActivity" json:"lastActivity"`
}
