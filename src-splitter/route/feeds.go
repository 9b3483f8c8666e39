package route

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"icalsplit/src-splitter/utils"
)

// feed filenames are `<course>--<token>.ics`; anything else 404s before
// touching the filesystem
var feedFileRegex = regexp.MustCompile(`^[A-Z0-9\-_.]+--[0-9a-f]{16}\.ics$`)

func Feeds(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /feeds/{file}", func(w http.ResponseWriter, r *http.Request) {
		file := r.PathValue("file")
		if !feedFileRegex.MatchString(file) {
			http.NotFound(w, r)
			return
		}

		body, err := os.ReadFile(filepath.Join(as.Config.GetFeedsDir(), file))
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			slog.Warn("can't read feed", "file", utils.Redact(file), "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			slog.Warn("can't write to response", "where", "route/feeds.go", "err", err)
		}
		slog.Debug("served feed", "file", utils.Redact(file))
	})
}
