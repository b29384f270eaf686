// Package testkit drives an http.Handler from JSON scenario files.
//
// A scenario file holds one scenario object or an array of them. An array is
// a flow: its steps run in order against the same handler, and values
// captured from one response can be used by later requests as {{name}}.
//
//	testdata/
//	  create_product.json        <- scenario or flow
//	  create_product_req.json    <- request body (optional)
//	  create_product_res.json    <- expected response body (optional)
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunDir(t, "testdata", func(t *testing.T) http.Handler {
//	        return newKernel(t).Handler()
//	    })
//	}
package testkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one request and what its response must look like.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"` // defaults to GET
	RequestURL      string            `json:"requestUrl"`
	Headers         map[string]string `json:"headers"`
	RequestBody     json.RawMessage   `json:"requestBody"`
	RequestFileName string            `json:"requestFileName"` // relative to the scenario file

	ExpectedCode       int             `json:"expectedCode"`
	ExpectedStatusCode int             `json:"expectedStatusCode"` // alias for expectedCode
	ExpectedBody       json.RawMessage `json:"expectedBody"`
	ResponseFileName   string          `json:"responseFileName"`

	// Capture maps a variable name to a dotted path in the response body,
	// e.g. {"lampId": "data.id"}.
	Capture map[string]string `json:"capture"`

	dir string
}

// Load reads the scenarios in path, in file order.
func Load(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &scenarios)
	} else {
		var s Scenario
		err = json.Unmarshal(data, &s)
		scenarios = []*Scenario{&s}
	}
	if err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	for i, s := range scenarios {
		s.dir = filepath.Dir(abs)
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %s step %d: %w", filepath.Base(abs), i, err)
		}
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.RequestURL == "" {
		return errors.New("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		s.ExpectedCode = s.ExpectedStatusCode
	}
	if s.ExpectedCode == 0 {
		return errors.New("expectedCode is required")
	}
	if len(s.RequestBody) > 0 && s.RequestFileName != "" {
		return errors.New("requestBody and requestFileName are exclusive")
	}
	if len(s.ExpectedBody) > 0 && s.ResponseFileName != "" {
		return errors.New("expectedBody and responseFileName are exclusive")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = http.MethodGet
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}

func (s *Scenario) requestBody() ([]byte, error) {
	if s.RequestFileName != "" {
		return os.ReadFile(s.resolve(s.RequestFileName))
	}
	return s.RequestBody, nil
}

func (s *Scenario) expectedBody() ([]byte, error) {
	if s.ResponseFileName != "" {
		return os.ReadFile(s.resolve(s.ResponseFileName))
	}
	return s.ExpectedBody, nil
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
