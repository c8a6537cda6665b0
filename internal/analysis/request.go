package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	contentType     = "application/json"
	requestIDHeader = "X-Request-ID"

	fieldResume         = "resume"
	fieldJobDescription = "job_description"

	maxResponseBytes = 4 << 20
)

type failureBody struct {
	Detail any `json:"detail"`
}

func (c *Client) postAnalyze(ctx context.Context, req *Request) ([]byte, error) {
	if req == nil || req.Resume == nil {
		return nil, errors.New("resume is required")
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if err := writeResume(w, req); err != nil {
		return nil, err
	}

	if err := w.WriteField(fieldJobDescription, req.JobDescription); err != nil {
		return nil, fmt.Errorf("write job description field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+analyzePath, &b)
	if err != nil {
		return nil, err
	}

	httpReq = c.setHeaders(httpReq, req.ID)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.request(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("analysis service response",
		zap.String("request_id", req.ID),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_length", utf8.RuneCount(data)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.MaxLogLength)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}

	return data, nil
}

func writeResume(w *multipart.Writer, req *Request) error {
	src, err := req.Resume.Open()
	if err != nil {
		return fmt.Errorf("open resume %q: %w", req.Resume.Name(), err)
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		fieldResume, escapeQuotes(req.Resume.Name())))
	h.Set("Content-Type", req.Resume.MediaType())

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create resume part: %w", err)
	}

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy resume %q: %w", req.Resume.Name(), err)
	}

	return nil
}

// parseDetail returns the "detail" string of a failure body, or "" when there is none.
// Structured details (for example validation error lists) are not shown verbatim.
func parseDetail(data []byte) string {
	var body failureBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	detail, ok := body.Detail.(string)
	if !ok {
		return ""
	}

	return detail
}

func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req, "")
	req.Header.Set("Accept", contentType)

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &MalformedResponseError{Err: err}
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	return req
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
