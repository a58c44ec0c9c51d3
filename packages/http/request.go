package http

import "strings"

var knownMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// NormalizeMethod upper-cases method. Methods the client does not know are
// sent as GET.
func NormalizeMethod(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if knownMethods[m] {
		return m
	}
	return "GET"
}

// IsKnownMethod reports whether NormalizeMethod keeps method as is.
func IsKnownMethod(method string) bool {
	return knownMethods[strings.ToUpper(strings.TrimSpace(method))]
}

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	// Form, when not empty, replaces Body with a multipart/form-data body.
	Form []*FormPart
}

// FormPart is one multipart field. Parts with a FileName are sent as files.
type FormPart struct {
	Name        string
	Value       string
	FileName    string
	ContentType string
	Data        []byte
}

func (p *FormPart) IsFile() bool {
	return p.FileName != ""
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// DelHeader removes key regardless of its case.
func (r *Request) DelHeader(key string) *Request {
	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			delete(r.Headers, k)
		}
	}
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) AddField(name, value string) *Request {
	r.Form = append(r.Form, &FormPart{Name: name, Value: value})
	return r
}

func (r *Request) AddFile(name, fileName, contentType string, data []byte) *Request {
	r.Form = append(r.Form, &FormPart{
		Name:        name,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	})
	return r
}

func (r *Request) IsMultipart() bool {
	return len(r.Form) > 0
}
