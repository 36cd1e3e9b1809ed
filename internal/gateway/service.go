package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbergo/guardrails/internal/history"
	"github.com/mbergo/guardrails/internal/httpclient"
	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/pkg/api"
)

// DefaultTimeout bounds one upstream generation call. It is the sole
// cancellation mechanism for the outbound leg.
const DefaultTimeout = 30 * time.Second

// Service executes provider calls end to end: parse the provider, resolve
// its credential, translate, perform one upstream POST, normalize. Every
// path yields a value-level result; nothing escapes the gateway as a Go
// error.
type Service interface {
	Call(ctx context.Context, req *api.CallRequest) api.CallResult
}

type service struct {
	logger   *zap.Logger
	adapters llm.AdapterSet
	creds    llm.Credentials
	client   httpclient.HTTPClient
	timeout  time.Duration
	recorder history.Recorder
}

// NewService builds the gateway. A nil client gets a plain http.Client; the
// per-call deadline comes from timeout, not the client. A nil recorder
// disables history capture.
func NewService(logger *zap.Logger, adapters llm.AdapterSet, creds llm.Credentials, client httpclient.HTTPClient, timeout time.Duration, recorder history.Recorder) Service {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &service{
		logger:   logger,
		adapters: adapters,
		creds:    creds,
		client:   client,
		timeout:  timeout,
		recorder: recorder,
	}
}

func (s *service) Call(ctx context.Context, req *api.CallRequest) api.CallResult {
	start := time.Now()

	p, err := api.ParseProvider(req.Provider)
	if err != nil {
		result := api.Failure(api.ErrInvalidProvider.Error(), nil)
		s.record(ctx, req.Provider, req.Model, result, time.Since(start))
		return result
	}

	result := s.dispatch(ctx, p, req)
	s.record(ctx, string(p), req.Model, result, time.Since(start))
	return result
}

func (s *service) dispatch(ctx context.Context, p api.Provider, req *api.CallRequest) api.CallResult {
	adapter, ok := s.adapters.For(p)
	if !ok {
		return api.Failure(api.ErrInvalidProvider.Error(), nil)
	}

	key, ok := s.creds.Resolve(p)
	if !ok {
		return api.Failuref("%s API Key not configured on server.", p.DisplayName())
	}

	upstream := adapter.GenerateRequest(req, key)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := httpclient.Exchange(callCtx, s.client, upstream.Method, upstream.URL, upstream.Headers, upstream.Body)
	if err != nil {
		if isTimeout(err) {
			s.logger.Warn("Upstream call timed out",
				zap.String("provider", string(p)),
				zap.String("model", req.Model),
				zap.Duration("timeout", s.timeout))
			return api.Failure("Request to AI provider timed out.", nil)
		}
		s.logger.Error("Upstream call failed",
			zap.String("provider", string(p)),
			zap.String("model", req.Model),
			zap.Error(err))
		return api.Failuref("Error calling AI provider: %v", err)
	}

	return adapter.ParseGenerateResponse(resp.StatusCode, resp.Body)
}

func (s *service) record(ctx context.Context, provider, model string, result api.CallResult, latency time.Duration) {
	if s.recorder == nil {
		return
	}

	rec := history.Record{
		ID:        requestID(ctx),
		Provider:  provider,
		Model:     model,
		Status:    history.StatusSuccess,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if !result.OK() {
		rec.Status = history.StatusError
		rec.Error = result.Message()
	}
	s.recorder.Record(rec)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(history.ContextKeyRequestID).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
