package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Jetrca92/geotagger-backend/internal/api/respond"
)

// apiClient calls the geotagger REST API.
type apiClient struct {
	client *resty.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &apiClient{client: c}
}

// do sends the request and returns the raw body of a 2xx response.
func (a *apiClient) do(ctx context.Context, method, path string, query map[string]string, body interface{}) ([]byte, error) {
	req := a.client.R().
		SetContext(ctx).
		SetError(&respond.ErrorResponse{})
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*respond.ErrorResponse); ok && e.Code != "" {
			if e.Message != "" {
				return nil, fmt.Errorf("http %d %s: %s", resp.StatusCode(), e.Code, e.Message)
			}
			return nil, fmt.Errorf("http %d %s", resp.StatusCode(), e.Code)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

// printJSON indents a JSON body; other bodies are copied as-is.
func printJSON(out io.Writer, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = out.Write(data)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
