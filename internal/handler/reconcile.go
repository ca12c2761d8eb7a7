package handler

import "net/http"

// Reconcile handles POST /reconcile: one status-advancement pass over all
// due trips. The endpoint exists for external schedulers and operators; the
// server also runs the same pass on its own interval.
func (s *Server) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.Reconcile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, report)
}
