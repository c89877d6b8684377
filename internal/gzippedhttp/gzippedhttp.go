// Package gzippedhttp accepts gzip encoded request bodies. Response
// compression is left to chi's Compress middleware.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// maxDecompressedBytes caps what a decoded body may grow to.
const maxDecompressedBytes = 4 << 20

type decompressedBody struct {
	body io.ReadCloser
	zr   *gzip.Reader
	r    io.Reader
}

func newDecompressedBody(body io.ReadCloser) (*decompressedBody, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &decompressedBody{
		body: body,
		zr:   zr,
		r:    io.LimitReader(zr, maxDecompressedBytes),
	}, nil
}

func (d *decompressedBody) Read(p []byte) (int, error) {
	return d.r.Read(p)
}

// Close closes the gzip stream and then the original body.
func (d *decompressedBody) Close() error {
	zErr := d.zr.Close()
	if err := d.body.Close(); err != nil {
		return err
	}

	return zErr
}

// DecompressRequest replaces a gzip encoded request body with its decoded
// stream. A body that is not valid gzip gets 400.
func DecompressRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(response, request)
			return
		}

		body, err := newDecompressedBody(request.Body)
		if err != nil {
			http.Error(response, "malformed gzip body", http.StatusBadRequest)
			return
		}
		defer body.Close()

		request.Body = body
		request.Header.Del("Content-Encoding")
		request.ContentLength = -1

		next.ServeHTTP(response, request)
	})
}
