package api

import "time"

// UploadResponse acknowledges a panel upload.
type UploadResponse struct {
	Message string      `json:"message"`
	Summary interface{} `json:"summary"`
}

// EntitiesResponse lists the entities of the current panel.
type EntitiesResponse struct {
	Entities []string `json:"entities"`
	Count    int      `json:"count"`
}

// YearsResponse lists the years recorded for one entity, most recent first.
type YearsResponse struct {
	Entity string `json:"entity"`
	Years  []int  `json:"years"`
}

// PredictResponse carries one prediction per modelled outcome.
type PredictResponse struct {
	Predictions interface{} `json:"predictions"`
	Timestamp   time.Time   `json:"timestamp"`
}
