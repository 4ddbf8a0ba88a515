package api

import (
	"crypto/subtle"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// RequireBearer rejects requests whose Authorization header is not
// "Bearer <secret>". The request body is never read on rejection.
func RequireBearer(secret string) func(http.Handler) http.Handler {
	expected := []byte("Bearer " + secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="upload"`)
				render.Status(r, http.StatusUnauthorized)
				render.PlainText(w, r, "Invalid password.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// contentDisposition formats a Content-Disposition header value. Printable
// ASCII names are always quoted; other names use the filename* form produced
// by mime.FormatMediaType.
func contentDisposition(disposition, name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] > 0x7e {
			return mime.FormatMediaType(disposition, map[string]string{"filename": name})
		}
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return disposition + `; filename="` + escaped + `"`
}
