package testkit

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockStep is one canned reply for outgoing HTTP calls whose URL starts
// with MatchURL. An empty MatchURL matches everything.
type MockStep struct {
	MatchURL   string `json:"matchUrl"`
	StatusCode int    `json:"statusCode"` // defaults to 200
	Body       string `json:"body"`
}

// RecordedRequest is an outgoing call MockTransport intercepted.
type RecordedRequest struct {
	Method string
	URL    string
	Body   string
}

// MockTransport is an http.RoundTripper that answers from MockSteps and
// records every request. Plug it into the client under test:
//
//	mt := testkit.NewMockTransport(testkit.MockStep{MatchURL: "https://hooks.slack.com/"})
//	n := notification.New(mailer, notification.WithHTTPClient(&http.Client{Transport: mt}))
type MockTransport struct {
	mu       sync.Mutex
	steps    []mockEntry
	requests []RecordedRequest
}

type mockEntry struct {
	step  MockStep
	calls int
}

func NewMockTransport(steps ...MockStep) *MockTransport {
	mt := &MockTransport{}
	for _, s := range steps {
		mt.steps = append(mt.steps, mockEntry{step: s})
	}
	return mt
}

// RoundTrip answers with the first matching step. Unmatched calls fail so
// a test never reaches the network.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		body = string(b)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.requests = append(mt.requests, RecordedRequest{Method: req.Method, URL: req.URL.String(), Body: body})

	for i := range mt.steps {
		e := &mt.steps[i]
		if e.step.MatchURL != "" && !strings.HasPrefix(req.URL.String(), e.step.MatchURL) {
			continue
		}
		e.calls++
		code := e.step.StatusCode
		if code == 0 {
			code = http.StatusOK
		}
		return &http.Response{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(e.step.Body)),
			Request:    req,
		}, nil
	}
	return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s", req.URL)
}

// Requests returns every intercepted call in order.
func (mt *MockTransport) Requests() []RecordedRequest {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]RecordedRequest(nil), mt.requests...)
}

// AssertAllCalled returns an error for each step that never matched.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.calls == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step (matchUrl=%q) was never called", e.step.MatchURL))
		}
	}
	return errs
}
