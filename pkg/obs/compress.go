package obs

import (
	"encoding/json"
	"net/http"

	"github.com/klauspost/compress/zstd"
)

// handleDumpCompressed serves the same payload as /dump, zstd-compressed,
// for callers pulling large dumps over a slow link.
func (s *Server) handleDumpCompressed(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	dump := s.eng.Dump(s.eng.CurrentTick())
	s.mu.RUnlock()

	payload, err := json.Marshal(dump)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zstd")

	enc, err := zstd.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer enc.Close()

	enc.Write(payload)
}
