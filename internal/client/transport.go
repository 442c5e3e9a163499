package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"go.uber.org/zap"
)

// Transport performs one API call. GET and DELETE params travel in the query
// string, POST and PUT params as a JSON body. The decoded response lands in
// out, which may be nil.
type Transport interface {
	Do(ctx context.Context, method, path string, params interface{}, out interface{}) error
}

// HTTPTransport is the Transport backed by net/http
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	token   string
	logger  *zap.Logger
}

// Option configures an HTTPTransport
type Option func(*HTTPTransport)

// WithHTTPClient replaces the default client (30s timeout)
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.client = c }
}

// WithToken sends "Authorization: Bearer <token>" on every request
func WithToken(token string) Option {
	return func(t *HTTPTransport) { t.token = token }
}

// WithLogger logs each request at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(t *HTTPTransport) { t.logger = logger }
}

// NewHTTPTransport creates a transport rooted at baseURL, e.g. "http://host/api"
func NewHTTPTransport(baseURL string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Do(ctx context.Context, method, path string, params interface{}, out interface{}) error {
	target := t.baseURL + path
	var body io.Reader

	switch method {
	case http.MethodGet, http.MethodDelete:
		values, err := encodeQuery(params)
		if err != nil {
			return err
		}
		if len(values) > 0 {
			target += "?" + values.Encode()
		}
	default:
		if params != nil {
			buf, err := json.Marshal(params)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}
			body = bytes.NewReader(buf)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apperrors.NewTransportError(0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return apperrors.NewTransportError(0, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(resp.StatusCode, "read response", err)
	}

	t.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	payload, err := UnwrapEnvelope(resp.StatusCode, raw)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewTransportError(resp.StatusCode, "decode response", err)
	}
	return nil
}

var envelopeKeys = map[string]bool{"data": true, "code": true, "msg": true, "message": true}

// UnwrapEnvelope returns the data member of a {data, code?, msg?, message?}
// envelope and any other payload unchanged. An envelope whose code is not a
// success code is an error even on a 2xx status.
func UnwrapEnvelope(status int, raw []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw, nil
	}
	for key := range obj {
		if !envelopeKeys[key] {
			return raw, nil
		}
	}
	data, hasData := obj["data"]
	code, hasCode := obj["code"]
	if !hasData && !hasCode {
		return raw, nil
	}
	if hasCode {
		if err := envelopeError(status, code, obj); err != nil {
			return nil, err
		}
	}
	if !hasData {
		return raw, nil
	}
	return data, nil
}

// envelopeError maps a non-success envelope code to an error. Numeric codes
// 0 and 200 and string codes "", "0", "200", "ok" and "success" succeed.
func envelopeError(status int, code json.RawMessage, obj map[string]json.RawMessage) error {
	var msg string
	for _, key := range []string{"message", "msg"} {
		if m, ok := obj[key]; ok && json.Unmarshal(m, &msg) == nil && msg != "" {
			break
		}
	}

	var n float64
	if err := json.Unmarshal(code, &n); err == nil {
		if n == 0 || n == 200 {
			return nil
		}
		if msg == "" {
			msg = fmt.Sprintf("envelope code %v", n)
		}
		return apperrors.NewTransportError(status, msg, nil)
	}

	var text string
	if err := json.Unmarshal(code, &text); err != nil {
		// null or an unexpected shape carries no verdict
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "0", "200", "ok", "success":
		return nil
	case apperrors.CodeValidation, apperrors.CodeNotFound, apperrors.CodeInvalidTransition:
		encoded, _ := json.Marshal(obj)
		return decodeError(status, encoded)
	}
	if msg == "" {
		msg = text
	}
	return apperrors.NewTransportError(status, msg, nil)
}

type errorBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Field    string `json:"field"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// decodeError rebuilds the server's error kind from a non-2xx response
func decodeError(status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apperrors.NewTransportError(status, http.StatusText(status), nil)
	}
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}

	switch body.Code {
	case apperrors.CodeValidation:
		return apperrors.NewValidationError(body.Field, msg)
	case apperrors.CodeNotFound:
		resource := body.Resource
		if resource == "" {
			resource = "resource"
		}
		return apperrors.NewNotFoundError(resource, body.ID)
	case apperrors.CodeInvalidTransition:
		return apperrors.NewInvalidTransitionError(body.From, body.To)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return apperrors.NewTransportError(status, msg, nil)
}

// encodeQuery flattens params into query values; slices become repeated keys
func encodeQuery(params interface{}) (url.Values, error) {
	switch p := params.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return p, nil
	case map[string]string:
		v := url.Values{}
		for key, val := range p {
			v.Set(key, val)
		}
		return v, nil
	case map[string]interface{}:
		v := url.Values{}
		for key, val := range p {
			switch items := val.(type) {
			case []string:
				for _, item := range items {
					v.Add(key, item)
				}
			case []interface{}:
				for _, item := range items {
					v.Add(key, fmt.Sprint(item))
				}
			case nil:
			default:
				v.Set(key, fmt.Sprint(val))
			}
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported query params type %T", params)
}
