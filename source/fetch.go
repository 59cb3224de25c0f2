package source

import (
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// Fetcher downloads the body of a URL.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

type doer interface {
	DoRedirects(req *fasthttp.Request, resp *fasthttp.Response, maxRedirectsCount int) error
}

type httpFetcher struct {
	client       doer
	maxRedirects int
}

// NewFetcher returns a Fetcher backed by a fasthttp client.
func NewFetcher(cfg Config) Fetcher {
	return newFetcher(&fasthttp.Client{
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}, cfg.MaxRedirects)
}

func newFetcher(c doer, maxRedirects int) *httpFetcher {
	return &httpFetcher{client: c, maxRedirects: maxRedirects}
}

func (f *httpFetcher) Fetch(url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)
	if err := f.client.DoRedirects(req, resp, f.maxRedirects); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode())
	}

	// resp is released on return
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
