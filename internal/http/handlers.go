package http

import (
	"net/http"

	"jiceot/internal/log"
	"jiceot/internal/services"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// fail logs server-side failures and writes the mapped error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if StatusFor(err) >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))
	}
	ErrorFromDomain(err).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.due.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(newDashboardView(d)).Write(w)
}

func (s *Server) handleDueItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := ParsePeriodParams(query, s.due.Today())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	filter, err := services.ParseFilter(query.Get("filter"))
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}

	list, err := s.due.DueItems(r.Context(), view, filter)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(newDueListView(list)).Write(w)
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKindParam(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	obs, err := s.due.QuickAdd(r.Context(), kind)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"kind":  kind,
		"items": newObligationViews(obs),
	}).Write(w)
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	kind, err := ParseKindParam(query)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	includeStopped, err := ParseBoolParam(query, "include_stopped")
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}

	types, err := s.due.ListTypes(r.Context(), kind, includeStopped)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	views := make([]obligationTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, newObligationTypeView(t))
	}
	NewJSONResponse().Body(map[string]any{"types": views}).Write(w)
}

func (s *Server) handleCreateType(w http.ResponseWriter, r *http.Request) {
	t, err := ParseObligationType(NewRequestBodyParser(r))
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	created, err := s.due.CreateType(r.Context(), t)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Body(newObligationTypeView(created)).
		Write(w)
}

func (s *Server) handleCreateCompletion(w http.ResponseWriter, r *http.Request) {
	rec, err := ParseCompletion(NewRequestBodyParser(r), s.due.Today())
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	created, err := s.due.RecordCompletion(r.Context(), rec)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Body(newCompletionView(created)).
		Write(w)
}
