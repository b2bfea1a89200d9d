// package testing contains shared testing utilities
package testing

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// Step is one scripted response for a [ScriptedTransport].
type Step struct {
	Status int
	Body   string
	// ContentType defaults to application/json when Body is non-empty.
	ContentType string
}

// ScriptedTransport replays a fixed sequence of responses and counts calls.
// When the script runs out, the last step repeats.
type ScriptedTransport struct {
	mu       sync.Mutex
	steps    []Step
	calls    int
	Requests []*http.Request
}

func NewScriptedTransport(steps ...Step) *ScriptedTransport {
	return &ScriptedTransport{steps: steps}
}

func (s *ScriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	s.calls++
	s.Requests = append(s.Requests, req)

	step := s.steps[idx]
	contentType := step.ContentType
	if contentType == "" && step.Body != "" {
		contentType = "application/json"
	}

	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	return &http.Response{
		StatusCode: step.Status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(step.Body)),
		Request:    req,
	}, nil
}

// Calls reports how many requests the transport served.
func (s *ScriptedTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
