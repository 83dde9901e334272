package security

import (
	"bytes"
	"io"
	"net/http"

	"github.com/retailpoint/checkout-api/internal/common"
)

// BodyLimit caps request payload size. Checkout requests are small JSON
// documents, so anything past the limit is rejected rather than truncated.
type BodyLimit struct {
	Max int64
}

// Middleware rejects oversized requests with 413 and the standard JSON
// error envelope. The body is fully buffered so downstream decoders see
// an exact, replayable payload.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		// Declared length lets us refuse without reading anything.
		if r.ContentLength > b.Max {
			tooLarge(w)
			return
		}

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(r.Body, b.Max+1))
		_ = r.Body.Close()
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "request body could not be read", nil)
			return
		}
		if n > b.Max {
			tooLarge(w)
			return
		}

		r.Body = io.NopCloser(&buf)
		r.ContentLength = n
		next.ServeHTTP(w, r)
	})
}

func tooLarge(w http.ResponseWriter) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body exceeds the allowed size", nil)
}
