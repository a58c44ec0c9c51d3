package runner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/abdul-hamid-achik/lazyreq/packages/http"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// build turns a resolved request into a transport request, reading local
// files and downloading remote ones for multipart parts.
func (r *Runner) build(ctx context.Context, resolved *ResolvedRequest) (*http.Request, error) {
	req := http.NewRequest(resolved.Method, resolved.URL)
	for _, h := range resolved.Headers {
		req.SetHeader(h.Key, h.Value)
	}

	if !resolved.IsMultipart() {
		req.SetBody(resolved.Body)
		return req, nil
	}

	for _, part := range resolved.Parts {
		switch part.Source {
		case parser.SourceLocalFile:
			data, err := os.ReadFile(part.Value)
			if err != nil {
				return nil, errs.New(errs.ErrMultipartSource, part.Raw(), err)
			}
			name := filepath.Base(part.Value)
			req.AddFile(part.Name, name, http.DetectContentType(name, data), data)

		case parser.SourceRemoteDownload:
			data, err := r.download(ctx, part.Value)
			if err != nil {
				return nil, errs.New(errs.ErrMultipartSource, part.Raw(), err)
			}
			name := http.FileNameFromURL(part.Value)
			req.AddFile(part.Name, name, http.DetectContentType(name, data), data)

		default:
			req.AddField(part.Name, part.Value)
		}
	}

	return req, nil
}

func (r *Runner) download(ctx context.Context, url string) ([]byte, error) {
	r.logger.Debug("downloading multipart source", zap.String("url", url))

	resp, err := r.transport.Do(ctx, http.NewRequest("GET", url))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("download failed with status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
