package rest

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	RequestIDHeader = "X-Request-ID"
	SessionIDHeader = "X-Session-ID"
)

// Config controls timeouts and the retry policy of the client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Request describes one logical call. It may be sent several times.
type Request struct {
	Method   string
	Endpoint string
	Body     interface{}

	// SessionID tags the request with the round it belongs to.
	SessionID string
	// Action names the call in logs and metrics (e.g. "hit").
	Action string
}

type Response struct {
	Status   int
	Body     []byte
	Attempts int
}

// RestClient sends requests to the game authority with a timeout per attempt and
// retries on network, server and timeout failures.
type RestClient struct {
	baseURL       string
	timeout       time.Duration
	retryAttempts int
	retryDelay    time.Duration
	httpClient    *http.Client
	observer      Observer
	logger        *zerolog.Logger
}

func NewRestClient(cfg Config, observer Observer, logger *zerolog.Logger) *RestClient {
	if logger == nil {
		logger = logging.GetZeroLogger("rest::client", nil)
	}
	if observer == nil {
		observer = NopObserver{}
	}
	retryAttempts := cfg.RetryAttempts
	if retryAttempts < 0 {
		retryAttempts = 0
	}
	return &RestClient{
		baseURL:       cfg.BaseURL,
		timeout:       cfg.Timeout,
		retryAttempts: retryAttempts,
		retryDelay:    cfg.RetryDelay,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		observer:      observer,
		logger:        logger,
	}
}

// Send performs the request and decodes a JSON response body into out (if not nil).
// The returned error is always a *failure.Error from the last attempt.
func (rc *RestClient) Send(ctx context.Context, req Request, out interface{}) (*Response, error) {
	op := req.Action
	if op == "" {
		op = fmt.Sprintf("%s %s", req.Method, req.Endpoint)
	}

	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, (&failure.Error{
				Kind: failure.KindValidation,
				Op:   op,
				Msg:  "Unable to marshal request body",
				Err:  err,
			}).WithSession(req.SessionID)
		}
	}

	maxAttempts := rc.retryAttempts + 1
	var lastErr *failure.Error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			rc.logger.Error().
				Str(logging.SessionIDKey, req.SessionID).
				Str(logging.ActionKey, op).
				Msgf("Error in %s %s: %s. Retrying (%d/%d)", req.Method, req.Endpoint, lastErr, attempt-1, rc.retryAttempts)
			if err := sleep(ctx, rc.retryDelay); err != nil {
				break
			}
		}
		resp, ferr := rc.attempt(ctx, req, op, payload, attempt, out)
		if ferr == nil {
			return resp, nil
		}
		lastErr = ferr
		if !failure.IsRetryable(ferr) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr.WithSession(req.SessionID)
}

func (rc *RestClient) attempt(ctx context.Context, req Request, op string, payload []byte, attempt int, out interface{}) (*Response, *failure.Error) {
	var attemptCtx context.Context
	var cancel context.CancelFunc
	if rc.timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, rc.timeout)
	} else {
		attemptCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	url := util.JoinURL(rc.baseURL, req.Endpoint)
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &failure.Error{Kind: failure.KindValidation, Op: op, Msg: "Unable to build request", Err: err}
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if req.SessionID != "" {
		httpReq.Header.Set(SessionIDHeader, req.SessionID)
	}

	record := Attempt{
		Method:    req.Method,
		Endpoint:  req.Endpoint,
		Action:    op,
		SessionID: req.SessionID,
		RequestID: requestID,
		Attempt:   attempt,
	}

	start := time.Now()
	httpResp, err := rc.httpClient.Do(httpReq)
	if err != nil {
		record.Duration = time.Since(start)
		ferr := classifyTransportError(ctx, attemptCtx, op, err)
		record.Err = ferr.WithSession(req.SessionID)
		rc.observe(record)
		return nil, ferr
	}
	defer httpResp.Body.Close()

	data, err := ioutil.ReadAll(httpResp.Body)
	record.Duration = time.Since(start)
	record.Status = httpResp.StatusCode
	if err != nil {
		ferr := classifyTransportError(ctx, attemptCtx, op, err)
		ferr.Status = httpResp.StatusCode
		record.Err = ferr.WithSession(req.SessionID)
		rc.observe(record)
		return nil, ferr
	}

	ferr := classifyStatus(op, httpResp.StatusCode, data)
	if ferr == nil && out != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			ferr = failure.Client(op, httpResp.StatusCode, "Empty response body")
		} else if uerr := json.Unmarshal(data, out); uerr != nil {
			ferr = &failure.Error{
				Kind:   failure.KindClient,
				Op:     op,
				Status: httpResp.StatusCode,
				Msg:    "Unable to parse response body",
				Err:    uerr,
			}
		}
	}
	if ferr != nil {
		// keep Err an untyped nil on success
		record.Err = ferr.WithSession(req.SessionID)
	}
	rc.observe(record)
	if ferr != nil {
		return nil, ferr
	}
	return &Response{Status: httpResp.StatusCode, Body: data, Attempts: attempt}, nil
}

// observe reports the attempt. A failing observer never affects the call.
func (rc *RestClient) observe(a Attempt) {
	defer func() {
		if r := recover(); r != nil {
			rc.logger.Warn().Msgf("Request observer panicked: %v", r)
		}
	}()
	rc.observer.ObserveAttempt(a)
}

func classifyTransportError(parent context.Context, attemptCtx context.Context, op string, err error) *failure.Error {
	if parent.Err() != nil {
		if errors.Is(parent.Err(), context.DeadlineExceeded) {
			return &failure.Error{Kind: failure.KindTimeout, Op: op, Msg: "Deadline exceeded", Err: err}
		}
		return failure.Network(op, errors.Wrap(parent.Err(), "Request cancelled"))
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &failure.Error{Kind: failure.KindTimeout, Op: op, Msg: "Request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &failure.Error{Kind: failure.KindTimeout, Op: op, Msg: "Request timed out", Err: err}
	}
	return failure.Network(op, err)
}

func classifyStatus(op string, status int, body []byte) *failure.Error {
	switch {
	case status >= 500:
		return failure.Server(op, status, errorMessage(body))
	case status >= 400:
		return failure.Client(op, status, errorMessage(body))
	case status < 200 || status >= 300:
		return failure.Client(op, status, fmt.Sprintf("Unexpected HTTP status %d", status))
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
