package server

import "privyscope/internal/model"

// AnalyzeURLRequest asks the server to acquire and analyze a live page.
type AnalyzeURLRequest struct {
	URL          string `json:"url" example:"https://shop.example.com"`
	SiteCategory string `json:"siteCategory,omitempty" example:"retail"`
}

// WSAnalyzeRequest is the single message a websocket client sends to start
// a streamed analysis. With Acquire set, only the page URL is required and
// the server gathers the snapshot itself.
type WSAnalyzeRequest struct {
	model.AnalysisInput
	Acquire bool `json:"acquire,omitempty"`
}

// ErrorResponse is the uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
