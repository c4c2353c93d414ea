// Package pager walks page-numbered GitHub list endpoints.
//
// Pages are requested from 1 upward until one comes back without items. There
// is no upper bound on the page number: the API is trusted to end the series.
// A non-2xx page is logged and, lacking the expected field, ends the series
// with whatever was fetched before it.
package pager

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/opscart/actions-usage/pkg/httpclient"
	"github.com/sirupsen/logrus"
)

// Getter issues a single GET request
type Getter interface {
	Get(ctx context.Context, url string) (*httpclient.Response, error)
}

// Extractor decodes the items of one page. An error means the body does not
// have the expected shape.
type Extractor[T any] func(body []byte) ([]T, error)

// Array extracts pages whose body is a bare JSON array
func Array[T any]() Extractor[T] {
	return func(body []byte) ([]T, error) {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
}

// Field extracts the array held by the named field of a JSON object. A
// missing field yields no items.
func Field[T any](name string) Extractor[T] {
	return func(body []byte) ([]T, error) {
		var page map[string]json.RawMessage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}

		raw, ok := page[name]
		if !ok {
			return nil, nil
		}

		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		return items, nil
	}
}

// StatusError describes a non-2xx answer from the API
type StatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s returned status %d: %s", e.URL, e.StatusCode, e.Message)
}

// NewStatusError builds a StatusError, taking the message from a GitHub error body
func NewStatusError(resp *httpclient.Response) *StatusError {
	var apiErr github.ErrorResponse
	_ = json.Unmarshal(resp.Body, &apiErr)

	return &StatusError{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Message:    apiErr.Message,
	}
}

// Pager binds a Getter to a logger
type Pager struct {
	getter Getter
	logger logrus.FieldLogger
}

// New creates a pager
func New(getter Getter, logger logrus.FieldLogger) *Pager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pager{getter: getter, logger: logger}
}

// Get exposes the underlying Getter for single-resource requests
func (p *Pager) Get(ctx context.Context, url string) (*httpclient.Response, error) {
	return p.getter.Get(ctx, url)
}

// Fetch requests baseURL page by page and concatenates the items in order
func Fetch[T any](ctx context.Context, p *Pager, baseURL string, extract Extractor[T]) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		url := PageURL(baseURL, page)

		resp, err := p.getter.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			p.logger.
				WithError(NewStatusError(resp)).
				WithFields(logrus.Fields{
					"url":    url,
					"status": resp.StatusCode,
				}).
				Warningln("Unsuccessful page response")
		}

		items, err := extract(resp.Body)
		if err != nil {
			p.logger.
				WithError(err).
				WithField("url", url).
				Debugln("Unexpected page shape, treating as last page")
			return all, nil
		}
		if len(items) == 0 {
			return all, nil
		}

		all = append(all, items...)
	}
}

// PageURL appends the page parameter to baseURL
func PageURL(baseURL string, page int) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "page=" + strconv.Itoa(page)
}
