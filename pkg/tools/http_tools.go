package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// get(url) → STRING response body
func httpGetTool() Def {
	return Def{
		Name:         "get",
		CapabilityID: capabilities.HTTP,
		Arity:        1,
		Execute: func(ctx context.Context, call Call) (evaluator.Value, error) {
			u, err := stringArg(call.Args, 0)
			if err != nil {
				return nil, err
			}
			if strings.HasPrefix(u, "data:") {
				return handleDataURL(u)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, fmt.Errorf("fetch error: %w", err)
			}
			return doRequest(req)
		},
	}
}

// post(url, body) → STRING response body
func httpPostTool() Def {
	return Def{
		Name:         "post",
		CapabilityID: capabilities.HTTP,
		Arity:        2,
		Execute: func(ctx context.Context, call Call) (evaluator.Value, error) {
			u, err := stringArg(call.Args, 0)
			if err != nil {
				return nil, err
			}
			body, err := stringArg(call.Args, 1)
			if err != nil {
				return nil, err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("fetch error: %w", err)
			}
			req.Header.Set("Content-Type", "text/plain; charset=utf-8")
			return doRequest(req)
		},
	}
}

func doRequest(req *http.Request) (evaluator.Value, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	return evaluator.String{Value: string(body)}, nil
}

// handleDataURL serves data:[<mediatype>],<data> without a network round trip.
func handleDataURL(dataURL string) (evaluator.Value, error) {
	rest := dataURL[len("data:"):]
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return nil, fmt.Errorf("fetch error: invalid data URL")
	}
	body := rest[commaIdx+1:]
	decoded, err := url.PathUnescape(body)
	if err != nil {
		decoded = body
	}
	return evaluator.String{Value: decoded}, nil
}
