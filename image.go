package main

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"rrs-edge/internal/origin"
)

// Object serves origin objects by key. Requests reach it after the rewrite
// middleware, so a key is either the original asset or one of its variants.
// The key is read straight from the path: a ServeMux would clean a rewritten
// path and redirect to a URL that rewrites to the same path again.
func (c Context) Object() http.HandlerFunc {
	return c.withError(func(w http.ResponseWriter, r *http.Request) (err error) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/")
		f, err := c.origin.Open(key)
		if err != nil {
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return
		}
		etag, err := origin.ETag(f)
		if err != nil {
			return
		}
		c.log.Debug("serving object", zap.String("key", key))

		// specify that:
		// 1. public: can be cached by any cache (browser, cdn, proxy, etc...)
		// 2. max-age=1 year: cache for 1 year
		// 3. immutable: will not change during cache duration, specifies
		// additional requests to validate freshness are not necessary
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("ETag", etag)

		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		return
	})
}
