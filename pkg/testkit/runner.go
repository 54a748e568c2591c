package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
)

// HandlerFactory builds a fresh handler for one flow so flows never share
// state.
type HandlerFactory func(t *testing.T) http.Handler

// Run executes the flow file at path as a subtest.
func Run(t *testing.T, newHandler HandlerFactory, path string) {
	t.Helper()

	f, err := LoadFlow(path)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	t.Run(f.Name, func(t *testing.T) { RunFlow(t, newHandler(t), f) })
}

// RunDir runs every flow in dir as a subtest, each against its own handler.
func RunDir(t *testing.T, newHandler HandlerFactory, dir string) {
	t.Helper()

	flows, errs := LoadDir(dir)
	for _, err := range errs {
		t.Errorf("testkit: %v", err)
	}
	for _, f := range flows {
		t.Run(f.Name, func(t *testing.T) { RunFlow(t, newHandler(t), f) })
	}
}

// RunFlow fires the flow's steps in order. A step that gets the wrong status
// code stops the flow, since later steps depend on its effects.
func RunFlow(t *testing.T, handler http.Handler, f *Flow) {
	t.Helper()

	vars := map[string]string{}
	for _, s := range f.Steps {
		ok := t.Run(s.Name, func(t *testing.T) {
			runStep(t, handler, f, s, vars)
		})
		if !ok {
			return
		}
	}
}

func runStep(t *testing.T, handler http.Handler, f *Flow, s Step, vars map[string]string) {
	t.Helper()

	var body io.Reader
	switch {
	case len(s.Body) > 0:
		body = strings.NewReader(expand(string(s.Body), vars))
	case s.RequestFileName != "":
		data, err := os.ReadFile(f.path(s.RequestFileName))
		if err != nil {
			t.Fatalf("read request file: %v", err)
		}
		body = bytes.NewReader([]byte(expand(string(data), vars)))
	}

	req := httptest.NewRequest(strings.ToUpper(s.Method), expand(s.URL, vars), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, expand(v, vars))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !AssertStatusCode(t, s, rec.Code, rec.Body.Bytes()) {
		t.FailNow()
	}
	if len(s.Expect) > 0 {
		AssertJSONSubset(t, []byte(expand(string(s.Expect), vars)), rec.Body.Bytes())
	}
	if p := f.path(s.ResponseFileName); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("read response file: %v", err)
		} else {
			AssertJSONBody(t, expected, rec.Body.Bytes())
		}
	}

	if len(s.Capture) == 0 {
		return
	}
	var doc any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("capture: response is not JSON: %v", err)
	}
	for name, path := range s.Capture {
		v, ok := Lookup(doc, path)
		if !ok {
			t.Fatalf("capture %s: no value at %q in %s", name, path, rec.Body.String())
		}
		vars[name] = scalar(v)
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// expand replaces {{name}} with captured values. Unknown names are kept.
func expand(s string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
