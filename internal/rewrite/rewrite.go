package rewrite

import (
	"math"
	"strings"
	"unicode"

	"rrs-edge/internal/variant"
)

// Config is fixed for the lifetime of a Rewriter.
type Config struct {
	// Sizes is the ordered allow-list of widths that have variants.
	Sizes []int
	// Extension replaces the extension of every rewritten URI when set,
	// e.g. "webp".
	Extension string
}

type Param struct {
	Value string `json:"value"`
}

// Request is the part of an edge request the rewriter looks at. Only URI
// is ever modified.
type Request struct {
	URI         string
	Querystring map[string]*Param
}

// Rewriter maps requests carrying a "width" query parameter onto their
// pre-generated variants. It is safe for concurrent use.
type Rewriter struct {
	allowed   map[int]struct{}
	extension string
}

func New(cfg Config) *Rewriter {
	rw := &Rewriter{
		allowed:   make(map[int]struct{}, len(cfg.Sizes)),
		extension: cfg.Extension,
	}
	for _, s := range cfg.Sizes {
		rw.allowed[s] = struct{}{}
	}
	return rw
}

func (rw *Rewriter) Allowed(width int) bool {
	_, ok := rw.allowed[width]
	return ok
}

// Rewrite points req at the variant for its width parameter and returns
// it. Requests without a usable width, with a width outside the allow-list
// or with a URI that has no extension are returned untouched.
func (rw *Rewriter) Rewrite(req *Request) *Request {
	if req == nil {
		return req
	}
	if uri, ok := rw.URI(req.URI, req.Querystring); ok {
		req.URI = uri
	}
	return req
}

// URI returns the variant URI for uri given its query parameters. ok is
// false when the request should pass through unchanged.
func (rw *Rewriter) URI(uri string, query map[string]*Param) (string, bool) {
	raw, ok := Lookup(query, "width")
	if !ok {
		return "", false
	}
	width, ok := ParseWidth(raw)
	if !ok || !rw.Allowed(width) {
		return "", false
	}
	base, ext, ok := variant.Split(uri)
	if !ok {
		return "", false
	}
	if rw.extension != "" {
		ext = rw.extension
	}
	// the width keeps the text the client sent, suffix included
	return variant.Key(base, raw, ext), true
}

// Lookup returns the value of the named parameter. Missing maps, missing or
// nil entries and empty values all count as absent.
func Lookup(query map[string]*Param, name string) (string, bool) {
	p := query[name]
	if p == nil || p.Value == "" {
		return "", false
	}
	return p.Value, true
}

// ParseWidth parses the leading integer of s: leading whitespace is
// skipped, a sign is accepted, and parsing stops at the first non-digit, so
// "300px" is 300. ok is false when no digit is found or the value does not
// fit in an int.
func ParseWidth(s string) (n int, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	digits := 0
	for ; digits < len(s) && '0' <= s[digits] && s[digits] <= '9'; digits++ {
		d := int(s[digits] - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
