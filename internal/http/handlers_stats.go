package http

import (
	"net/http"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

type statsView struct {
	Stats services.MonthStats
	Prev  core.MonthCursor
	Next  core.MonthCursor
}

// handleStats renders the monthly breakdown page.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, ok := s.monthStats(w, r)
	if !ok {
		return
	}
	s.render(w, r, "stats.html", statsView{
		Stats: st,
		Prev:  st.Cursor.Previous(),
		Next:  st.Cursor.Next(),
	})
}

// handleStatsChart returns the pie chart payload as JSON.
func (s *Server) handleStatsChart(w http.ResponseWriter, r *http.Request) {
	st, ok := s.monthStats(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st.Chart)
}

func (s *Server) monthStats(w http.ResponseWriter, r *http.Request) (services.MonthStats, bool) {
	cursor := ParseMonthParams(r.URL.Query(), s.today())

	ctx, cancel := withStoreTimeout(r.Context())
	defer cancel()

	st, err := s.stats.Month(ctx, cursor)
	if err != nil {
		s.events.LogError(ctx, "Failed to compute month stats", err,
			applog.ComponentStats, applog.OpLoad, applog.NewFields().WithMonth(cursor.Key()))
		InternalServerError(msgStoreFailure).Write(w)
		return services.MonthStats{}, false
	}
	return st, true
}
