package models

import "time"

type TourExecutionDto struct {
	ID                      string          `json:"id"`
	TourID                  string          `json:"tourId"`
	TourName                string          `json:"tourName"`
	Status                  ExecutionStatus `json:"status"`
	CompletedKeyPointsCount int             `json:"completedKeyPointsCount"`
	TotalKeyPointsCount     int             `json:"totalKeyPointsCount"`
	StartedAt               time.Time       `json:"startedAt"`
	CompletedAt             *time.Time      `json:"completedAt,omitempty"`
	AbandonedAt             *time.Time      `json:"abandonedAt,omitempty"`
	LastActivity            time.Time       `json:"lastActivity"`
}

func MapToExecutionDto(execution *TourExecution, totalKeyPoints int) *TourExecutionDto {
	return &TourExecutionDto{
		ID:                      execution.ID.Hex(),
		TourID:                  execution.TourID.Hex(),
		TourName:                execution.TourName,
		Status:                  execution.Status,
		CompletedKeyPointsCount: len(execution.CompletedKeyPoints),
		TotalKeyPointsCount:     totalKeyPoints,
		StartedAt:               execution.StartedAt,
		CompletedAt:             execution.CompletedAt,
		AbandonedAt:             execution.AbandonedAt,
		LastActivity:            execution.LastActivity,
	}
}
