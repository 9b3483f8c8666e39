package route

import (
	"encoding/json"
	"net/http"

	"icalsplit/src-splitter/model"
	"icalsplit/src-splitter/utils"
)

// About reports the last refresh outcome as JSON.
func About(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /about", func(w http.ResponseWriter, r *http.Request) {
		lastRun, err := model.LastRunLog(r.Context(), as.BunDb)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := map[string]any{
			"status": "ok",
		}
		if lastRun != nil {
			resp["last_run"] = map[string]any{
				"started_at":      lastRun.StartedAt,
				"finished_at":     lastRun.FinishedAt,
				"events_total":    lastRun.EventsTotal,
				"events_kept":     lastRun.EventsKept,
				"events_filtered": lastRun.EventsFiltered,
				"courses":         lastRun.Courses,
				"feeds_written":   lastRun.FeedsWritten,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
