package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"budgetlens/internal/core"
	"budgetlens/internal/report"
)

// AnalysisRequestMessage asks a worker to evaluate a plan. AsOf is a
// YYYY-MM-DD date; empty means now.
type AnalysisRequestMessage struct {
	PlanID    string    `json:"plan_id"`
	AsOf      string    `json:"as_of,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAnalysisRequestMessage creates a request for planID. A zero asOf is omitted.
func NewAnalysisRequestMessage(planID string, asOf time.Time) *AnalysisRequestMessage {
	msg := &AnalysisRequestMessage{PlanID: planID, Timestamp: time.Now()}
	if !asOf.IsZero() {
		msg.AsOf = core.DateOf(asOf).String()
	}
	return msg
}

// AsOfTime parses AsOf; an empty value yields the zero time.
func (m *AnalysisRequestMessage) AsOfTime() (time.Time, error) {
	if m.AsOf == "" {
		return time.Time{}, nil
	}
	d, err := core.ParseDate(m.AsOf)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// ToJSON converts the message to JSON bytes
func (m *AnalysisRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AnalysisRequestMessageFromJSON decodes a request. Messages without a plan
// id or with an unparseable date are rejected.
func AnalysisRequestMessageFromJSON(data []byte) (*AnalysisRequestMessage, error) {
	var msg AnalysisRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	msg.PlanID = strings.TrimSpace(msg.PlanID)
	if msg.PlanID == "" {
		return nil, errors.New("missing plan_id")
	}
	if _, err := msg.AsOfTime(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportGeneratedMessage announces a finished report.
type ReportGeneratedMessage struct {
	ReportID           string    `json:"report_id"`
	PlanID             string    `json:"plan_id"`
	Score              float64   `json:"score"`
	Band               string    `json:"band"`
	TotalInsights      int       `json:"total_insights"`
	HighPriority       int       `json:"high_priority"`
	HasCriticalIssues  bool      `json:"has_critical_issues"`
	TopRecommendations []string  `json:"top_recommendations"`
	GeneratedAt        time.Time `json:"generated_at"`
}

func NewReportGeneratedMessage(r *report.AnalysisReport) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		ReportID:           r.ID,
		PlanID:             r.PlanID,
		Score:              r.OverallHealthScore,
		Band:               r.HealthBand(),
		TotalInsights:      r.TotalInsightCount(),
		HighPriority:       r.HighPriorityInsightCount(),
		HasCriticalIssues:  r.HasCriticalIssues(),
		TopRecommendations: append([]string{}, r.TopRecommendations...),
		GeneratedAt:        r.GeneratedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
