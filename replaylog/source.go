package replaylog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Open resolves a replay source: "-" for stdin, an http(s) URL, or a file path
// Callers close the returned reader
func Open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case src == "":
		return nil, fmt.Errorf("open replay: empty source")
	case src == "-":
		return io.NopCloser(os.Stdin), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return fetch(ctx, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	return f, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch replay: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch replay: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch replay %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}
