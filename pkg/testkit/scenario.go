// Package testkit drives REST API tests from JSON flow files.
//
// A flow is an ordered list of requests fired against one handler, so later
// steps see the state earlier ones left behind (a login, a cart):
//
//	{
//	  "name": "checkout",
//	  "steps": [
//	    {"name": "login", "method": "POST", "url": "/api/auth/login",
//	     "body": {"email": "test@example.com", "password": "password123"},
//	     "expectedCode": 200, "capture": {"token": "data.token"}},
//	    {"name": "orders", "url": "/api/orders",
//	     "headers": {"Authorization": "Bearer {{token}}"},
//	     "expectedCode": 200, "expect": {"data": [{"id": "ORD001"}]}}
//	  ]
//	}
//
// "expect" is matched as a subset of the response; "responseFileName" is
// compared in full. {{var}} placeholders are replaced in url, headers and
// body with values captured by earlier steps.
//
//	testkit.RunDir(t, newHandler, "testdata")
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Flow is one scenario file.
type Flow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`

	dir string
}

// Step is a single request and its assertions.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"` // defaults to GET
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	Body            json.RawMessage `json:"body"`
	RequestFileName string          `json:"requestFileName"` // relative to the flow file

	ExpectedCode     int             `json:"expectedCode"`
	Expect           json.RawMessage `json:"expect"`
	ResponseFileName string          `json:"responseFileName"`

	// Capture maps a variable name to a dotted path into the response body,
	// e.g. {"token": "data.token"} or {"first": "data.items.0.id"}.
	Capture map[string]string `json:"capture"`
}

// LoadFlow reads and validates a flow file.
func LoadFlow(path string) (*Flow, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid flow %q: %w", abs, err)
	}
	f.dir = filepath.Dir(abs)
	return &f, nil
}

// LoadDir loads every *.json file in dir, sorted by file name. Files that
// fail to load are returned as errors alongside the good ones.
func LoadDir(dir string) ([]*Flow, []error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		return nil, []error{fmt.Errorf("testkit: no flow files found in %q", dir)}
	}
	sort.Strings(paths)

	var (
		flows []*Flow
		errs  []error
	)
	for _, p := range paths {
		f, err := LoadFlow(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		flows = append(flows, f)
	}
	return flows, errs
}

func (f *Flow) validate() error {
	if f.Name == "" {
		return errors.New("name is required")
	}
	if len(f.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if s.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if s.Method == "" {
			s.Method = "GET"
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("%02d_%s", i+1, s.Method)
		}
	}
	return nil
}

// path resolves a file name relative to the flow file.
func (f *Flow) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.dir, name)
}
