package httpx

import (
	"fmt"
	"net/http"
	"strconv"
)

// parseIntQuery parses a non-negative integer query parameter. A missing or
// empty parameter yields zero. Returns false if the value is invalid, in which
// case an error response has already been written.
func parseIntQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_query",
			Err:     fmt.Errorf("%s must be a non-negative integer", name),
		})
		return 0, false
	}
	return v, true
}
