package validators

import (
	"net/http"
)

const maxQueryValueLen = 200

// QueryString returns the trimmed query value, capped to a sane length.
func QueryString(r *http.Request, key string) string {
	return SanitizeString(r.URL.Query().Get(key), maxQueryValueLen)
}
