package httphandler

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

// AllowJSON rejects request bodies that are not JSON. Image uploads are
// the only requests allowed to send multipart forms.
func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err == nil && allowedMedia(r, mediaType) {
			next.ServeHTTP(w, r)
			return
		}

		slog.Warn("invalid media type",
			"path", r.URL.Path, "contentType", r.Header.Get("Content-Type"),
		)
		writeJSON(w, slog.Default(), http.StatusUnsupportedMediaType,
			errorBody{Error: "invalid media type"},
		)
	}
	return http.HandlerFunc(hf)
}

func allowedMedia(r *http.Request, mediaType string) bool {
	switch mediaType {
	case "application/json":
		return true
	case "multipart/form-data":
		return r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/images")
	}
	return false
}
