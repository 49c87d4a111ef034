// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/ledongthuc/pdf"

	"github.com/taibuivan/briefly/pkg/pointer"
)

// SourceResolver turns a request's source into plain text for the prompt.
type SourceResolver interface {
	Resolve(context context.Context, request *Request) (string, error)
}

var errSourceTooLarge = errors.New("generation: source document is too large")

// HTTPSource resolves inline text directly and fetches URLs through a client
// that refuses private, loopback and metadata addresses.
type HTTPSource struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPSource builds a resolver whose fetches are bounded by timeout and maxBytes.
func NewHTTPSource(timeout time.Duration, maxBytes int64) *HTTPSource {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return &HTTPSource{client: safeurl.Client(config).Client, maxBytes: maxBytes}
}

/*
Resolve returns the source text of request.

Description: Inline text wins over a URL. PDF documents (by content type or
magic bytes) are flattened page by page; anything else is returned as is and
stripped of markup by the processor. A request without a source yields "".
*/
func (source *HTTPSource) Resolve(context context.Context, request *Request) (string, error) {
	if !pointer.Blank(request.SourceText) {
		return *request.SourceText, nil
	}
	if pointer.Blank(request.SourceURL) {
		return "", nil
	}

	data, contentType, err := source.fetch(context, *request.SourceURL)
	if err != nil {
		return "", err
	}

	if isPDF(contentType, data) {
		return extractPDF(data)
	}
	return string(data), nil
}

func (source *HTTPSource) fetch(context context.Context, rawURL string) ([]byte, string, error) {
	request, err := http.NewRequestWithContext(context, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("generation: invalid source url: %w", err)
	}

	response, err := source.client.Do(request)
	if err != nil {
		return nil, "", fmt.Errorf("generation: fetch source: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("generation: fetch source: unexpected status %d", response.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, source.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("generation: read source: %w", err)
	}
	if int64(len(data)) > source.maxBytes {
		return nil, "", errSourceTooLarge
	}
	return data, response.Header.Get("Content-Type"), nil
}

func isPDF(contentType string, data []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/pdf" {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("generation: open pdf: %w", err)
	}

	var text strings.Builder
	for index := 1; index <= reader.NumPage(); index++ {
		page := reader.Page(index)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")

		// The prompt only quotes the beginning of the document.
		if text.Len() > promptSourceLimit*4 {
			break
		}
	}
	return text.String(), nil
}
