package http

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	appweb "gagyebu/web"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

var templateFuncs = template.FuncMap{
	"amount":  core.FormatAmount,
	"income":  func(d decimal.Decimal) string { return core.FormatSigned("+", d) },
	"expense": func(d decimal.Decimal) string { return core.FormatSigned("-", d) },
	"netClass": func(t core.Totals) string {
		if t.NetPositive() {
			return "positive"
		}
		return "negative"
	},
	"txAmount": func(tx core.Transaction) string {
		sign := "+"
		if tx.Type == core.Expense {
			sign = "-"
		}
		return core.FormatSigned(sign, decimal.NewFromFloat(tx.Amount))
	},
	"txLabel": func(tx core.Transaction) string {
		if tx.Type == core.Expense {
			return "지출"
		}
		return "수입"
	},
	"percent": func(part, total decimal.Decimal) string {
		if total.IsZero() {
			return "0%"
		}
		return part.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
	},
	"monthNum": func(m time.Month) int { return int(m) },
	"blanks":   func(n int) []struct{} { return make([]struct{}, n) },
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// renderString executes the named template into a string so a failure never
// leaves a half-written response.
func (s *Server) renderString(name string, data any) (string, error) {
	if s.templates == nil {
		return "", errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// render writes the named template with status 200, or a 500 fragment on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	body, err := s.renderString(name, data)
	if err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields().WithPath(r.URL.Path))
		InternalServerError("화면을 그리지 못했습니다.").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}
