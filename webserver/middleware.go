package webserver

import (
	"net/http"
	"strings"
)

// apiRedirectRouter is an http middleware. It accepts an http.Handler and
// returns a new http.Handler. Calls to the unversioned api (/api/volume)
// are served by the current api version (/api/v1.0/volume) without
// redirecting the client.
func (web *WebServer) apiRedirectRouter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {

		if strings.HasPrefix(req.URL.Path, "/api/") && !web.apiMatch.MatchString(req.URL.Path) {
			req.URL.Path = strings.Replace(req.URL.Path, "/api/", "/api/v"+web.apiVersion+"/", 1)
		}
		next.ServeHTTP(w, req)
	})
}
