package http

import (
	"net/http"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

// errorTarget receives validation messages inside the editor.
const errorTarget = "#ledger-error"

type editorView struct {
	Day             services.DayView
	Cursor          core.MonthCursor
	Categories      []string
	DefaultCategory string
}

// handleEditor renders the modal for one date with a fresh form.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDatePath(r)
	if err != nil {
		UnprocessableEntityError(msgInvalidDate).Write(w)
		return
	}

	ctx, cancel := withStoreTimeout(r.Context())
	defer cancel()

	day, err := s.ledger.Day(ctx, date)
	if err != nil {
		s.events.LogError(ctx, "Failed to load day", err,
			applog.ComponentLedger, applog.OpLoad, applog.NewFields().WithDate(date.String()))
		InternalServerError(msgStoreFailure).Write(w)
		return
	}

	s.render(w, r, "editor", editorView{
		Day:             day,
		Cursor:          core.CursorOf(date.Time),
		Categories:      s.categories,
		DefaultCategory: core.DefaultCategory,
	})
}

// handleAddTransaction validates the form, stores the transaction and
// re-renders the list and sums.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDatePath(r)
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	form, err := parseTransactionForm(r)
	if err != nil {
		BadRequestError(msgBadRequest).Retarget(errorTarget).Write(w)
		return
	}
	tx, err := form.Transaction()
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	ctx, cancel := withStoreTimeout(r.Context())
	defer cancel()

	day, err := s.ledger.Add(ctx, date, tx)
	if err != nil {
		if _, ok := validationMessage(err); ok {
			s.writeValidationError(w, r, err)
			return
		}
		s.events.LogError(ctx, "Failed to add transaction", err,
			applog.ComponentLedger, applog.OpAdd, applog.NewFields().WithDate(date.String()))
		InternalServerError(msgStoreFailure).Retarget(errorTarget).Write(w)
		return
	}

	s.writeDay(w, r, day, true)
}

// handleRemoveTransaction deletes one transaction. Unknown ids still answer 200.
func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	date, err := ParseDatePath(r)
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}
	id, err := ParseIDPath(r)
	if err != nil {
		BadRequestError(msgInvalidID).Retarget(errorTarget).Write(w)
		return
	}

	ctx, cancel := withStoreTimeout(r.Context())
	defer cancel()

	day, err := s.ledger.Remove(ctx, date, id)
	if err != nil {
		s.events.LogError(ctx, "Failed to remove transaction", err,
			applog.ComponentLedger, applog.OpRemove, applog.NewFields().WithDate(date.String()))
		InternalServerError(msgStoreFailure).Retarget(errorTarget).Write(w)
		return
	}

	s.writeDay(w, r, day, false)
}

// writeDay renders the list and sums fragment and announces the change.
func (s *Server) writeDay(w http.ResponseWriter, r *http.Request, day services.DayView, resetForm bool) {
	body, err := s.renderString("ledger_body", day)
	if err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields().WithPath(r.URL.Path))
		InternalServerError("화면을 그리지 못했습니다.").Retarget(errorTarget).Write(w)
		return
	}

	resp := NewHTMXResponse().TriggerLedgerChanged(day.Date.String())
	if resetForm {
		resp.TriggerFormReset()
	}
	resp.BodyHTML(body).Write(w)
}

func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	msg, ok := validationMessage(err)
	if !ok {
		msg = msgBadRequest
	}
	s.logger.DebugContext(r.Context(), "Rejected transaction input",
		applog.FieldOperation, applog.OpValidate, "error", err)
	UnprocessableEntityError(msg).Retarget(errorTarget).Write(w)
}
