package obs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ssikv/ssikv/pkg/site"
	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// siteView is the JSON projection of one site's state.
type siteView struct {
	ID      topology.SiteID  `json:"id"`
	Status  string           `json:"status"`
	Entries []site.DumpEntry `json:"entries"`
}

func (s *Server) siteView(id topology.SiteID) (siteView, bool) {
	st, ok := s.eng.Site(id)
	if !ok {
		return siteView{}, false
	}
	return siteView{ID: id, Status: st.Status().String(), Entries: st.Dump()}, true
}

// handleRun reports the identifier stamping this process's event stream,
// so a client reconnecting to /events/ws can tell whether it's still
// talking to the same run or a restarted one.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"runId": s.log.RunID()})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []siteView
	for _, id := range s.eng.SiteIDs() {
		if v, ok := s.siteView(id); ok {
			out = append(out, v)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || n < 1 || n > topology.NumSites {
		writeError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.siteView(topology.SiteID(n))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// txView is the JSON projection of one transaction's state.
type txView struct {
	ID         txn.ID   `json:"id"`
	StartTick  int      `json:"startTick"`
	State      string   `json:"state"`
	CommitTick int      `json:"commitTick,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Writes     []string `json:"writes,omitempty"`
	Reads      []string `json:"reads,omitempty"`
	Edges      []string `json:"edges,omitempty"`
}

func (s *Server) txView(id txn.ID) (txView, bool) {
	t, ok := s.eng.Transaction(id)
	if !ok {
		return txView{}, false
	}
	v := txView{ID: t.ID, StartTick: t.StartTick, State: t.State.String(), CommitTick: t.CommitTick, Reason: t.StatusReason}
	for x := range t.Writes {
		v.Writes = append(v.Writes, x.Name())
	}
	for _, r := range t.Reads {
		v.Reads = append(v.Reads, r.Var.Name())
	}
	for _, e := range s.eng.GraphEdges(id) {
		v.Edges = append(v.Edges, e.Kind.String()+" "+string(e.From)+"->"+string(e.To)+" "+e.Var.Name())
	}
	return v, true
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []txView
	for _, id := range s.eng.TransactionIDs() {
		if v, ok := s.txView(id); ok {
			out = append(out, v)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	id := txn.ID(chi.URLParam(r, "id"))

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.txView(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown transaction")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := 200
	if q := r.URL.Query().Get("n"); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, s.log.Recent(n))
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, http.StatusOK, s.eng.Dump(s.eng.CurrentTick()))
}
