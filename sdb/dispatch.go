package sdb

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Do signs action with params, sends it, and hands the response body to
// parser. It is the path every operation takes; callers use it directly to
// swap in a different parser or send an action this package does not wrap.
//
// Do never retries. A failure before a response arrives is a TransportError;
// a non-2xx status is decoded into a ServiceError; a parser failure is a
// DecodingError.
func Do[T any](ctx context.Context, c *Client, action string, params map[string]*string, parser Parser[T]) (T, error) {
	var zero T

	req := c.BuildRequest(action, params)
	status, body, err := c.send(ctx, action, req)
	if err != nil {
		return zero, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return zero, decodeServiceError(status, body)
	}

	result, err := parser.Parse(body, c.config.NilString)
	if err != nil {
		if errors.Is(err, ErrDecoding) {
			return zero, err
		}
		return zero, &DecodingError{Action: action, Err: err}
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, action string, req *SignedRequest) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(), nil)
	if err != nil {
		return 0, nil, &TransportError{Action: action, Err: err}
	}

	resp, err := c.config.HTTPClient.Do(httpReq)
	if err != nil {
		return 0, nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Action: action, Err: err}
	}

	c.config.Logger.DebugContext(ctx, "simpledb request",
		"action", action,
		"host", req.Host,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return resp.StatusCode, body, nil
}

type xmlErrorResponse struct {
	XMLName xml.Name `xml:"Response"`
	Errors  []struct {
		Code     string `xml:"Code"`
		Message  string `xml:"Message"`
		BoxUsage string `xml:"BoxUsage"`
	} `xml:"Errors>Error"`
	RequestID string `xml:"RequestID"`
}

// decodeServiceError turns an error document into a ServiceError. Bodies that
// are not error documents still produce a ServiceError carrying the status.
func decodeServiceError(status int, body []byte) error {
	var doc xmlErrorResponse
	if err := xml.Unmarshal(body, &doc); err != nil || len(doc.Errors) == 0 {
		return &ServiceError{
			StatusCode: status,
			Code:       strings.ReplaceAll(http.StatusText(status), " ", ""),
			Message:    truncate(strings.TrimSpace(string(body)), 256),
		}
	}

	first := doc.Errors[0]
	usage, _ := strconv.ParseFloat(strings.TrimSpace(first.BoxUsage), 64)
	return &ServiceError{
		StatusCode: status,
		Code:       strings.TrimSpace(first.Code),
		Message:    strings.TrimSpace(first.Message),
		RequestID:  strings.TrimSpace(doc.RequestID),
		BoxUsage:   usage,
	}
}
