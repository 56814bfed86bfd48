package main

import (
	"time"

	"fertilizer-guide/internal/advisory"
	"fertilizer-guide/internal/nutrient"
)

// ---------- API Request Models ----------

// RecommendationRequest is the body of POST /fertilizer-recommendation/.
// Pointers let a reading of 0 pass the required check.
type RecommendationRequest struct {
	CropName string   `json:"crop_name" binding:"required"`
	N        *float64 `json:"N" binding:"required,min=0,max=100"`
	P        *float64 `json:"P" binding:"required,min=0,max=100"`
	K        *float64 `json:"K" binding:"required,min=0,max=100"`
}

func (r RecommendationRequest) reading() nutrient.Reading {
	return nutrient.Reading{N: *r.N, P: *r.P, K: *r.K}
}

// ---------- API Response Models ----------

// RecommendationResponse carries either Recommendations or Message, never both.
type RecommendationResponse struct {
	Crop            string                `json:"crop"`
	Recommendations string                `json:"recommendations,omitempty"`
	Message         string                `json:"message,omitempty"`
	Graph           string                `json:"graph"`
	Nutrients       []nutrient.Assessment `json:"nutrients"`
	Advisories      []nutrient.Category   `json:"advisories"`
	Status          []advisory.Message    `json:"status"`
}

// CropsResponse lists the crops in the reference table.
type CropsResponse struct {
	Crops []string `json:"crops"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string    `json:"status"`
	Crops  int       `json:"crops"`
	Time   time.Time `json:"time"`
}

// ---------- Shared Evaluation ----------

// Evaluation bundles everything a presentation layer needs for one reading.
type Evaluation struct {
	Result          nutrient.Result
	Requirement     nutrient.Requirement
	Reading         nutrient.Reading
	Recommendations string
	Messages        []advisory.Message
	Graph           string
}
