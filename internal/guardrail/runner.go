package guardrail

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mbergo/guardrails/internal/gateway"
	"github.com/mbergo/guardrails/pkg/api"
)

// ErrUnknownCheck is returned when a run names a check id outside the
// registry.
var ErrUnknownCheck = errors.New("guardrail: unknown check")

// Runner drives one check end to end: fill in the check's default prompt and
// system framing where the caller left them empty, make the gateway call,
// evaluate the outcome.
type Runner struct {
	logger   *zap.Logger
	registry *Registry
	gateway  gateway.Service
}

func NewRunner(logger *zap.Logger, registry *Registry, gw gateway.Service) *Runner {
	return &Runner{logger: logger, registry: registry, gateway: gw}
}

// RunOutcome pairs the verdict with the prompt that was actually sent, so a
// caller that relied on the check's default prompt can display it.
type RunOutcome struct {
	Check   Descriptor     `json:"check"`
	Prompt  string         `json:"prompt"`
	Verdict Verdict        `json:"verdict"`
	Result  api.CallResult `json:"result"`
}

func (r *Runner) Run(ctx context.Context, checkID string, req *api.CallRequest) (*RunOutcome, error) {
	check, ok := r.registry.Get(checkID)
	if !ok {
		return nil, ErrUnknownCheck
	}

	if req.Prompt == "" {
		req.Prompt = check.DefaultPrompt()
	}
	if req.SystemMessage == "" {
		req.SystemMessage = check.SystemMessage()
	}

	result := r.gateway.Call(ctx, req)
	verdict := check.Evaluate(ctx, Input{Prompt: req.Prompt, Result: result})

	r.logger.Info("Guardrail check evaluated",
		zap.String("check", checkID),
		zap.String("status", verdict.Status),
		zap.Bool("call_ok", result.OK()))

	return &RunOutcome{
		Check:   describe(check),
		Prompt:  req.Prompt,
		Verdict: verdict,
		Result:  result,
	}, nil
}
