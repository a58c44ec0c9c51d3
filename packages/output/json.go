package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/runner"
	"github.com/tidwall/gjson"
)

// JSONResult is the machine-readable form of one request result.
type JSONResult struct {
	RequestID string        `json:"requestId"`
	Request   *JSONRequest  `json:"request"`
	Response  *JSONResponse `json:"response"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse represents response details. Body is embedded as JSON when
// the response body is valid JSON and as a string otherwise.
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONError is written for failed commands.
type JSONError struct {
	Error string `json:"error"`
}

// JSONFormatter formats results as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithJSONWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.Result) {
	headers := make(map[string]string, len(result.Request.Headers))
	for _, h := range result.Request.Headers {
		headers[h.Key] = h.Value
	}

	resp := result.Response
	out := JSONResult{
		RequestID: result.RequestID,
		Request: &JSONRequest{
			Method:  result.Request.Method,
			URL:     result.Request.URL,
			Headers: headers,
		},
		Response: &JSONResponse{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        resp.URL,
			Headers:    resp.Headers,
			Body:       rawBody(resp.Body),
			Duration:   float64(resp.Duration.Microseconds()) / 1000,
		},
	}
	f.write(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.write(JSONError{Error: err.Error()})
}

func (f *JSONFormatter) write(v any) {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func rawBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
