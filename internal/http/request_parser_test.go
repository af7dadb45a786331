package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetlens/internal/core"
)

func TestParseAsOf(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    time.Time
		wantErr bool
	}{
		{name: "missing means now", query: "", want: time.Time{}},
		{name: "date", query: "?as_of=2025-04-16", want: time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", query: "?as_of=%202025-04-16%20", want: time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)},
		{name: "bad format", query: "?as_of=16/04/2025", wantErr: true},
		{name: "impossible date", query: "?as_of=2025-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/plans/home/report"+tt.query, nil)
			got, err := ParseAsOf(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAsOf() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Errorf("error %v should wrap errBadRequest", err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseAsOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeTransaction(t *testing.T) {
	now := time.Date(2025, 4, 16, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		body    string
		want    core.Transaction
		wantErr bool
	}{
		{
			name: "full body",
			body: `{"category_id":" food ","amount":"12,50","date":"2025-04-10","description":"market"}`,
			want: core.Transaction{PlanID: "home", CategoryID: "food", Amount: core.Money{Cents: 1250}, Date: core.NewDate(2025, 4, 10), Description: "market"},
		},
		{
			name: "date defaults to today",
			body: `{"category_id":"food","amount":"€ 3.10"}`,
			want: core.Transaction{PlanID: "home", CategoryID: "food", Amount: core.Money{Cents: 310}, Date: core.NewDate(2025, 4, 16)},
		},
		{
			name: "unparseable amount becomes zero for the service to reject",
			body: `{"category_id":"food","amount":"lots"}`,
			want: core.Transaction{PlanID: "home", CategoryID: "food", Date: core.NewDate(2025, 4, 16)},
		},
		{
			name: "control characters stripped",
			body: `{"category_id":"food","amount":"1","description":"a\u0000b"}`,
			want: core.Transaction{PlanID: "home", CategoryID: "food", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 4, 16), Description: "ab"},
		},
		{name: "malformed json", body: `{"category_id":`, wantErr: true},
		{name: "unknown field", body: `{"category":"food"}`, wantErr: true},
		{name: "bad date", body: `{"category_id":"food","amount":"1","date":"yesterday"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/plans/home/transactions", strings.NewReader(tt.body))
			got, err := DecodeTransaction(r, "home", now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Errorf("error %v should wrap errBadRequest", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DecodeTransaction() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"tab\tkept", "tab\tkept"},
		{"bell\x07gone", "bellgone"},
		{"del\x7fgone", "delgone"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
