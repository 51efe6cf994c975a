package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"sort"

	"rrs-edge/internal/rewrite"
)

// Event is a viewer-request event as delivered by the edge runtime. Only
// the request is read; the rest of the event is ignored.
type Event struct {
	Request Request `json:"request"`
}

// Request is an edge request. Fields other than the URI are kept exactly as
// received so they are returned untouched.
type Request struct {
	rewrite.Request

	received string
	fields   map[string]json.RawMessage
}

func Decode(b []byte) (ev Event, err error) {
	err = json.Unmarshal(b, &ev)
	return
}

// UnmarshalJSON never fails on a valid JSON object. A querystring whose
// entries do not look like {"value": "..."} has those entries dropped, and
// a querystring given as an encoded string ("width=640") is parsed.
func (r *Request) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	err := json.Unmarshal(b, &fields)
	if err != nil {
		return err
	}
	*r = Request{fields: fields}

	if raw, ok := fields["uri"]; ok {
		var uri string
		if json.Unmarshal(raw, &uri) == nil {
			r.URI = uri
			r.received = uri
		}
	}

	raw, ok := fields["querystring"]
	if !ok {
		return nil
	}
	r.Querystring = map[string]*rewrite.Param{}

	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		values, err := url.ParseQuery(encoded)
		if err != nil {
			return nil
		}
		for name := range values {
			r.Querystring[name] = &rewrite.Param{Value: values.Get(name)}
		}
		return nil
	}

	var entries map[string]json.RawMessage
	if json.Unmarshal(raw, &entries) != nil {
		return nil
	}
	for name, entry := range entries {
		var p struct {
			Value *string `json:"value"`
		}
		if json.Unmarshal(entry, &p) != nil || p.Value == nil {
			continue
		}
		r.Querystring[name] = &rewrite.Param{Value: *p.Value}
	}
	return nil
}

// MarshalJSON writes the received fields back verbatim, in key order. Only
// a rewritten URI, or fields missing from a request built in code, are
// encoded afresh, and without HTML escaping.
func (r Request) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.fields)+2)
	for k, v := range r.fields {
		out[k] = v
	}
	if _, ok := out["uri"]; !ok || r.URI != r.received {
		uri, err := encode(r.URI)
		if err != nil {
			return nil, err
		}
		out["uri"] = uri
	}
	if _, ok := out["querystring"]; !ok && r.Querystring != nil {
		qs, err := encode(r.Querystring)
		if err != nil {
			return nil, err
		}
		out["querystring"] = qs
	}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := encode(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(out[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type Handler struct {
	Rewriter *rewrite.Rewriter
}

// Handle returns the event's request, pointed at its variant when one
// applies. It does not fail.
func (h Handler) Handle(_ context.Context, ev Event) (Request, error) {
	req := ev.Request
	h.Rewriter.Rewrite(&req.Request)
	return req, nil
}
