package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// HandlerFactory returns a fresh handler, so scenario files never share
// state through the store.
type HandlerFactory func(t *testing.T) http.Handler

// RunDir runs every *.json file in dir as a subtest named after the file,
// each against its own handler.
func RunDir(t *testing.T, dir string, newHandler HandlerFactory) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	if len(paths) == 0 {
		t.Fatalf("testkit: no scenario files in %q", dir)
	}
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		t.Run(name, func(t *testing.T) {
			Run(t, newHandler(t), path)
		})
	}
}

// Run executes the scenarios in path against handler. A failing step stops
// the flow because later steps usually depend on it.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	scenarios, err := Load(path)
	require.NoError(t, err)

	vars := Vars{}
	for _, s := range scenarios {
		if !t.Run(s.Name, func(t *testing.T) { runScenario(t, handler, s, vars) }) {
			return
		}
	}
}

// Vars holds values captured earlier in a flow.
type Vars map[string]string

// Expand replaces every {{name}} in s.
func (v Vars) Expand(s string) string {
	if len(v) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, 2*len(v))
	for name, value := range v {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario, vars Vars) {
	t.Helper()

	body, err := s.requestBody()
	require.NoError(t, err, "[%s] request body", s.Name)

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader([]byte(vars.Expand(string(body))))
	}
	req := httptest.NewRequest(s.RequestMethod, vars.Expand(s.RequestURL), reader)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range s.Headers {
		req.Header.Set(k, vars.Expand(v))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())

	expected, err := s.expectedBody()
	require.NoError(t, err, "[%s] expected body", s.Name)
	AssertJSONSubset(t, s, []byte(vars.Expand(string(expected))), rec.Body.Bytes())

	if len(s.Capture) == 0 {
		return
	}
	var actual any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &actual), "[%s] capture needs a JSON body", s.Name)
	for name, path := range s.Capture {
		value, ok := Lookup(actual, path)
		require.True(t, ok, "[%s] capture %s: %q not in response", s.Name, name, path)
		vars[name] = fmt.Sprint(value)
	}
}
