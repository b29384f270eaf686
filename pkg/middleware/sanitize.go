package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeLimit bounds how much of a body is rewritten; larger bodies pass
// through untouched and are rejected later by bind.
const sanitizeLimit = 4 << 20

// Sanitize trims every string in the query and in JSON request bodies and
// strips markup from it. Non-JSON bodies are not touched.
func Sanitize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			q := r.URL.Query()
			for key, values := range q {
				for i, v := range values {
					values[i] = CleanString(v)
				}
				q[key] = values
			}
			r.URL.RawQuery = q.Encode()
		}

		if r.Body != nil && r.Body != http.NoBody && isJSON(r) {
			sanitizeBody(r)
		}

		next.ServeHTTP(w, r)
	})
}

// CleanString trims s and removes any HTML from it. Plain text, including
// ampersands, is returned unescaped.
func CleanString(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	out := strictPolicy.Sanitize(s)
	if unescaped := html.UnescapeString(out); !strings.ContainsAny(unescaped, "<>") {
		return strings.TrimSpace(unescaped)
	}
	return strings.TrimSpace(out)
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(strings.ToLower(ct), "application/json")
}

func sanitizeBody(r *http.Request) {
	buf, err := io.ReadAll(io.LimitReader(r.Body, sanitizeLimit+1))
	if err != nil || len(buf) > sanitizeLimit {
		r.Body = readCloser{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
		return
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil || dec.More() {
		// Leave malformed JSON for bind to report.
		r.Body = io.NopCloser(bytes.NewReader(buf))
		return
	}

	out, err := json.Marshal(cleanValue(doc))
	if err != nil {
		r.Body = io.NopCloser(bytes.NewReader(buf))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(out))
	r.ContentLength = int64(len(out))
}

func cleanValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return CleanString(t)
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = cleanValue(inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = cleanValue(inner)
		}
		return t
	}
	return v
}

type readCloser struct {
	io.Reader
	io.Closer
}
