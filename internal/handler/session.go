package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionHeader carries the cart identity. Every cart is keyed by an
// explicit session ID rather than ambient process-wide state, so multiple
// shoppers can use the API concurrently.
const sessionHeader = "X-Session-ID"

// sessionID returns the request's session ID, minting a fresh UUID when the
// header is missing or oversized. The resolved ID is always echoed on the
// response so clients can stick to it.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(sessionHeader)
	if id == "" || len(id) > 128 {
		id = uuid.New().String()
	}
	w.Header().Set(sessionHeader, id)
	return id
}
