// Package http serves the calendar, the per-date editor and the stats page.
//
// This file holds the request parsing helpers shared by the handlers.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gagyebu/internal/core"
)

// maxBodyBytes caps a transaction submission.
const maxBodyBytes = 64 << 10

// ParseMonthParams reads ?year=&month= into a cursor, defaulting each part
// to today's. A month outside 1..12 falls back to today's month.
func ParseMonthParams(query url.Values, today core.Date) core.MonthCursor {
	c := core.CursorOf(today.Time)

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 && y < 10000 {
			c.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			c.Month = time.Month(m)
		}
	}
	return c
}

// ParseDatePath reads the {date} path value.
func ParseDatePath(r *http.Request) (core.Date, error) {
	return core.ParseDate(r.PathValue("date"))
}

// ParseIDPath reads the {id} path value.
func ParseIDPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
}

// RequestBodyParser handles both form-encoded bodies (HTMX) and JSON.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and keeps it for Parse.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like JSON, otherwise as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the sanitized value for key from whichever encoding was parsed.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// transactionForm is the editor's submission before validation.
type transactionForm struct {
	Type        string
	Category    string
	Description string
	Amount      string
}

func parseTransactionForm(r *http.Request) (transactionForm, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return transactionForm{}, err
	}
	return transactionForm{
		Type:        p.Get("type"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
	}, nil
}

// Transaction validates the form in the order the editor reports problems:
// description, amount, then type.
func (f transactionForm) Transaction() (core.Transaction, error) {
	if strings.TrimSpace(f.Description) == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	txType, err := core.ParseTransactionType(f.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	category := f.Category
	if category == "" {
		category = core.DefaultCategory
	}
	tx := core.Transaction{
		Type:        txType,
		Category:    category,
		Description: f.Description,
		Amount:      amount,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
