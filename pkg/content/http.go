package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxBody caps the size of a fetched lesson.
const maxBody = 4 << 20

// ErrTooLarge is wrapped in a *TransportError when a lesson exceeds the
// fetch limit. A truncated lesson is never returned.
var ErrTooLarge = errors.New("lesson too large")

// HTTPResolver fetches lessons from BaseURL/folder/lessonN.{md,html,component}.
type HTTPResolver struct {
	BaseURL string
	Client  *http.Client // nil uses http.DefaultClient
}

// Resolve implements Resolver. Only 404 and 410 count as not found; any
// other non-2xx status is a transport failure.
func (r *HTTPResolver) Resolve(ctx context.Context, folder string, lesson int) (*Document, error) {
	base, err := lessonBase(folder, lesson)
	if err != nil {
		return nil, err
	}
	root, err := url.Parse(strings.TrimSuffix(r.BaseURL, "/") + "/")
	if err != nil {
		return nil, &TransportError{Path: r.BaseURL, Err: err}
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	for _, c := range candidates {
		target := root.JoinPath(base + c.ext).String()
		body, found, err := fetch(ctx, client, target)
		if err != nil {
			return nil, &TransportError{Path: target, Err: err}
		}
		if found {
			return &Document{Path: target, Kind: c.kind, Body: body}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", root.JoinPath(base), ErrNotFound)
}

func fetch(ctx context.Context, client *http.Client, target string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, false, err
	}
	if len(body) > maxBody {
		return nil, false, ErrTooLarge
	}
	return body, true, nil
}
