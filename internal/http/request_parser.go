// This file parses and validates request input for the JSON handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgetlens/internal/core"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// TransactionRequest is the body of POST /api/plans/{id}/transactions.
// Amount is a decimal string; a comma separator and currency symbols are
// accepted. An empty date means today.
type TransactionRequest struct {
	CategoryID  string `json:"category_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// errBadRequest marks input errors that map to 400.
var errBadRequest = errors.New("bad request")

// ParseAsOf reads the as_of query parameter as midnight UTC of that day. A
// missing value yields the zero time, which the report service treats as now.
func ParseAsOf(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if v == "" {
		return time.Time{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: as_of must be YYYY-MM-DD", errBadRequest)
	}
	return d.Time, nil
}

// DecodeTransaction reads a TransactionRequest and converts it for planID.
// Malformed JSON is an errBadRequest; domain validation is left to the
// service.
func DecodeTransaction(r *http.Request, planID string, now time.Time) (core.Transaction, error) {
	var req TransactionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}

	date := core.DateOf(now)
	if v := strings.TrimSpace(req.Date); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest)
		}
		date = d
	}

	return core.Transaction{
		PlanID:      planID,
		CategoryID:  sanitizeInput(req.CategoryID),
		Amount:      core.NormalizeAmount(req.Amount),
		Date:        date,
		Description: sanitizeInput(req.Description),
	}, nil
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newline.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
