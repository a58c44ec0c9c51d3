package curl

import (
	"testing"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/runner"
	"github.com/stretchr/testify/assert"
)

func TestExport_Get(t *testing.T) {
	req := &runner.ResolvedRequest{
		Method:  "GET",
		URL:     "https://api.example.com/users/42",
		Headers: []*parser.Header{{Key: "Authorization", Value: "Bearer abc"}},
	}

	assert.Equal(t,
		`curl 'https://api.example.com/users/42' -H 'Authorization: Bearer abc'`,
		Export(req))
}

func TestExport_PostBody(t *testing.T) {
	req := &runner.ResolvedRequest{
		Method:  "POST",
		URL:     "https://api.example.com/login",
		Headers: []*parser.Header{{Key: "Content-Type", Value: "application/json"}},
		Body:    `{"user":"o'neil"}`,
	}

	assert.Equal(t,
		`curl -X POST 'https://api.example.com/login' -H 'Content-Type: application/json' --data-raw '{"user":"o'\''neil"}'`,
		Export(req))
}

func TestExport_Head(t *testing.T) {
	req := &runner.ResolvedRequest{Method: "HEAD", URL: "https://x.test"}
	assert.Equal(t, `curl --head 'https://x.test'`, Export(req))
}

func TestExport_Multipart(t *testing.T) {
	req := &runner.ResolvedRequest{
		Method: "POST",
		URL:    "https://x.test/upload",
		Body:   "ignored",
		Parts: []*parser.MultipartPart{
			{Name: "greeting", Source: parser.SourceInline, Value: "@not-a-file"},
			{Name: "avatar", Source: parser.SourceLocalFile, Value: "/tmp/x.png"},
			{Name: "doc", Source: parser.SourceRemoteDownload, Value: "https://files.test/f.pdf"},
		},
	}

	assert.Equal(t,
		`curl -sSLo 'f.pdf' 'https://files.test/f.pdf' && `+
			`curl -X POST 'https://x.test/upload' --form-string 'greeting=@not-a-file' -F 'avatar=@"/tmp/x.png"' -F 'doc=@"f.pdf"'`,
		Export(req))
}

func TestExport_Options(t *testing.T) {
	req := &runner.ResolvedRequest{
		Method:  "DELETE",
		URL:     "https://x.test/a",
		Headers: []*parser.Header{{Key: "Accept", Value: "*/*"}},
	}

	got := NewExporter(WithMultiline(true), WithInsecure(true)).Export(req)
	assert.Equal(t, "curl \\\n  -k \\\n  -X DELETE \\\n  'https://x.test/a' \\\n  -H 'Accept: */*'", got)
}

func TestExport_MultipartPathWithFormSyntax(t *testing.T) {
	req := &runner.ResolvedRequest{
		Method: "POST",
		URL:    "https://x.test/upload",
		Parts: []*parser.MultipartPart{
			{Name: "doc", Source: parser.SourceLocalFile, Value: `/tmp/a;type=text/html,b "q".txt`},
		},
	}

	assert.Equal(t,
		`curl -X POST 'https://x.test/upload' -F 'doc=@"/tmp/a;type=text/html,b \"q\".txt"'`,
		Export(req))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, Quote("plain"))
	assert.Equal(t, `''`, Quote(""))
	assert.Equal(t, `'it'\''s'`, Quote("it's"))
	assert.Equal(t, `'$HOME'`, Quote("$HOME"))
}
