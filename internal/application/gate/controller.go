// Package gate implements the Gate Controller: the GATE step's state
// machine driver, evaluated against a run's checkpoint stats and persisted
// across a pause/resume boundary (spec §4.4).
package gate

import (
	"context"
	"errors"
	"time"

	"github.com/oronts/datahub/internal/application/engine"
	"github.com/oronts/datahub/internal/domain/checkpoint"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/rungate"
)

// ErrNoPendingGate is returned by Approve/Reject when stepKey has no paused
// gate in the run's checkpoint.
var ErrNoPendingGate = errors.New("gate: no pending gate for step")

// ErrGateMismatch is returned when the gate pause stored under stepKey
// records a different StepKey than the one the caller named.
var ErrGateMismatch = errors.New("gate: stepKey does not match the currently paused gate")

// Controller evaluates GATE steps and satisfies engine.GateEvaluator
// structurally, so the Graph/Linear Orchestrator can drive it through the
// dispatcher without either package importing the other's concrete types.
type Controller struct{}

// NewController constructs a Controller.
func NewController() *Controller {
	return &Controller{}
}

// Evaluate runs the THRESHOLD math / MANUAL / TIMEOUT decision for one GATE
// step invocation and, on pause, writes the checkpoint entries described in
// spec §4.4.
func (c *Controller) Evaluate(ctx context.Context, runID, pipelineID string, step pipeline.StepDefinition, execCtx *engine.ExecutorContext, input []record.Record) (engine.GateOutcome, error) {
	policy := policyFromConfig(step.Config)
	cp := execCtx.Checkpoint()
	stats := cp.Stats()

	state := rungate.Evaluate(policy, stats)
	if state == rungate.StateAutoApproved {
		return engine.GateOutcome{ShouldPause: false}, nil
	}

	previewCount := policy.EffectivePreviewCount()
	preview := input
	if len(preview) > previewCount {
		preview = preview[:previewCount]
	}

	cp.SetGatePause(checkpoint.GatePause{
		StepKey:            step.Key,
		ApprovalType:       string(policy.ApprovalType),
		PendingRecordCount: len(input),
		PendingRecords:     input,
		PausedAt:           time.Now(),
	})

	if policy.ApprovalType == rungate.ApprovalTimeout && policy.TimeoutSeconds > 0 {
		cp.Set(checkpoint.GateTimeoutKey(step.Key), checkpoint.GateTimeout{
			StepKey:   step.Key,
			ExpiresAt: time.Now().Add(time.Duration(policy.TimeoutSeconds) * time.Second),
		})
	}

	if policy.NotifyWebhook != "" {
		cp.Set("__gateNotifyWebhook:"+step.Key, policy.NotifyWebhook)
	}
	if policy.NotifyEmail != "" {
		cp.Set("__gateNotifyEmail:"+step.Key, policy.NotifyEmail)
	}

	return engine.GateOutcome{ShouldPause: true, Preview: preview}, nil
}

// Approve resolves a PAUSED gate at stepKey, clearing its checkpoint entry
// and the run's paused flag so the orchestrator can resume from the pending
// record set.
func (c *Controller) Approve(execCtx *engine.ExecutorContext, stepKey string) (checkpoint.GatePause, error) {
	gp, err := c.resolve(execCtx, stepKey)
	if err != nil {
		return gp, err
	}
	m := execCtx.Metrics()
	m.Paused = false
	m.PausedAtStep = ""
	return gp, nil
}

// Reject resolves a PAUSED gate at stepKey the same way Approve does; the
// caller (the run-level RejectGate command) is responsible for transitioning
// the run to CANCELLED rather than RUNNING.
func (c *Controller) Reject(execCtx *engine.ExecutorContext, stepKey string) (checkpoint.GatePause, error) {
	return c.resolve(execCtx, stepKey)
}

func (c *Controller) resolve(execCtx *engine.ExecutorContext, stepKey string) (checkpoint.GatePause, error) {
	cp := execCtx.Checkpoint()
	gp, ok := cp.GatePause(stepKey)
	if !ok {
		return checkpoint.GatePause{}, ErrNoPendingGate
	}
	if gp.StepKey != stepKey {
		return checkpoint.GatePause{}, ErrGateMismatch
	}
	cp.ClearGatePause(stepKey)
	cp.Delete(checkpoint.GateTimeoutKey(stepKey))
	return gp, nil
}

func policyFromConfig(config map[string]interface{}) rungate.Policy {
	policy := rungate.Policy{ApprovalType: rungate.ApprovalManual}
	if config == nil {
		return policy
	}
	if v, ok := config["approvalType"].(string); ok && v != "" {
		policy.ApprovalType = rungate.ApprovalType(v)
	}
	if v, ok := config["errorThresholdPercent"].(float64); ok {
		policy.ErrorThresholdPercent = &v
	}
	if v, ok := config["timeoutSeconds"].(int); ok {
		policy.TimeoutSeconds = v
	} else if v, ok := config["timeoutSeconds"].(float64); ok {
		policy.TimeoutSeconds = int(v)
	}
	if v, ok := config["previewCount"].(int); ok {
		policy.PreviewCount = v
	} else if v, ok := config["previewCount"].(float64); ok {
		policy.PreviewCount = int(v)
	}
	if v, ok := config["notifyWebhook"].(string); ok {
		policy.NotifyWebhook = v
	}
	if v, ok := config["notifyEmail"].(string); ok {
		policy.NotifyEmail = v
	}
	return policy
}

var _ engine.GateEvaluator = (*Controller)(nil)
