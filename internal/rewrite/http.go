package rewrite

import (
	"net/http"
	"net/url"
)

// Middleware rewrites the path of each request before handing it to next,
// following the same rules as Rewrite. The query string is kept so the
// origin still sees the original parameters.
func Middleware(rw *Rewriter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := map[string]*Param{}
		if width := r.URL.Query().Get("width"); width != "" {
			query["width"] = &Param{Value: width}
		}
		uri, ok := rw.URI(r.URL.Path, query)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = uri
		r2.URL.RawPath = ""
		next.ServeHTTP(w, r2)
	})
}
