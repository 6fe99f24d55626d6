package http

import (
	"net/http"

	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

type calendarView struct {
	Grid     services.MonthGrid
	Weekdays []string
	// CloseModal clears the editor with an out-of-band swap.
	CloseModal bool
}

// handleIndex renders the full page around the calendar for ?year=&month=.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, ok := s.calendarView(w, r)
	if !ok {
		return
	}
	s.render(w, r, "index.html", view)
}

// handleCalendar renders only the calendar section. The editor's close
// control calls it with close=1.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	view, ok := s.calendarView(w, r)
	if !ok {
		return
	}
	view.CloseModal = r.URL.Query().Get("close") == "1"
	s.render(w, r, "calendar", view)
}

func (s *Server) calendarView(w http.ResponseWriter, r *http.Request) (calendarView, bool) {
	today := s.today()
	cursor := ParseMonthParams(r.URL.Query(), today)

	ctx, cancel := withStoreTimeout(r.Context())
	defer cancel()

	grid, err := s.calendar.Month(ctx, cursor, today)
	if err != nil {
		s.events.LogError(ctx, "Failed to load calendar month", err,
			applog.ComponentCalendar, applog.OpLoad,
			applog.NewFields().WithMonth(cursor.Key()))
		InternalServerError(msgStoreFailure).Write(w)
		return calendarView{}, false
	}
	return calendarView{Grid: grid, Weekdays: services.Weekdays}, true
}
