// Package http serves analysis reports and accepts transactions over a
// JSON API.
//
// This file builds the JSON response bodies. Domain values are copied into
// wire structs so the API shape does not follow internal renames.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"budgetlens/internal/insight"
	"budgetlens/internal/log"
	"budgetlens/internal/report"
	"budgetlens/internal/scoring"
)

// InsightResponse is one insight on the wire.
type InsightResponse struct {
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	Type         string   `json:"type"`
	Impact       string   `json:"impact,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
	CategoryID   string   `json:"category_id,omitempty"`
	Source       string   `json:"source,omitempty"`
	Actionable   bool     `json:"actionable"`
	HighPriority bool     `json:"high_priority"`
	Confidence   int      `json:"confidence"`
	Dismissed    bool     `json:"dismissed,omitempty"`
}

// ReportResponse is the body of GET /api/plans/{id}/report.
type ReportResponse struct {
	ID                 string             `json:"id"`
	PlanID             string             `json:"plan_id"`
	GeneratedAt        time.Time          `json:"generated_at"`
	HealthScore        float64            `json:"health_score"`
	HealthBand         string             `json:"health_band"`
	HasCriticalIssues  bool               `json:"has_critical_issues"`
	Summary            string             `json:"summary"`
	TotalInsights      int                `json:"total_insights"`
	HighPriority       int                `json:"high_priority_insights"`
	Patterns           []InsightResponse  `json:"patterns"`
	Variances          []InsightResponse  `json:"variances"`
	Optimizations      []InsightResponse  `json:"optimizations"`
	Anomalies          []InsightResponse  `json:"anomalies"`
	CashFlow           *InsightResponse   `json:"cash_flow,omitempty"`
	Risk               *InsightResponse   `json:"risk,omitempty"`
	TopRecommendations []string           `json:"top_recommendations"`
	Metrics            map[string]float64 `json:"metrics,omitempty"`
}

// TransactionResponse acknowledges a recorded transaction.
type TransactionResponse struct {
	ID     string `json:"id"`
	PlanID string `json:"plan_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newInsightResponse(in insight.Insight) InsightResponse {
	return InsightResponse{
		Title:        in.Title,
		Message:      in.Message,
		Type:         string(in.Type),
		Impact:       string(in.Impact),
		Value:        in.Clone().Value,
		Suggestion:   in.Suggestion,
		CategoryID:   in.CategoryID,
		Source:       in.Source,
		Actionable:   in.Actionable(),
		HighPriority: in.HighPriority(),
		Confidence:   scoring.Confidence(in.Impact),
		Dismissed:    in.Dismissed,
	}
}

func newInsightResponses(ins []insight.Insight) []InsightResponse {
	out := make([]InsightResponse, 0, len(ins))
	for _, in := range ins {
		out = append(out, newInsightResponse(in))
	}
	return out
}

func optionalInsight(in *insight.Insight) *InsightResponse {
	if in == nil {
		return nil
	}
	r := newInsightResponse(*in)
	return &r
}

// NewReportResponse converts a report for the wire. Empty collections are
// encoded as [] rather than null.
func NewReportResponse(r *report.AnalysisReport) ReportResponse {
	recs := r.TopRecommendations
	if recs == nil {
		recs = []string{}
	}
	return ReportResponse{
		ID:                 r.ID,
		PlanID:             r.PlanID,
		GeneratedAt:        r.GeneratedAt,
		HealthScore:        r.OverallHealthScore,
		HealthBand:         r.HealthBand(),
		HasCriticalIssues:  r.HasCriticalIssues(),
		Summary:            r.Summary,
		TotalInsights:      r.TotalInsightCount(),
		HighPriority:       r.HighPriorityInsightCount(),
		Patterns:           newInsightResponses(r.Patterns),
		Variances:          newInsightResponses(r.Variances),
		Optimizations:      newInsightResponses(r.Optimizations),
		Anomalies:          newInsightResponses(r.Anomalies),
		CashFlow:           optionalInsight(r.CashFlow),
		Risk:               optionalInsight(r.Risk),
		TopRecommendations: recs,
		Metrics:            r.PerformanceMetrics,
	}
}

// writeJSON encodes body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path)
	}
}

// writeError sends an ErrorResponse carrying the request ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorResponse{Error: msg, RequestID: requestID(r)})
}
