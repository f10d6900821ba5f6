package callback

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"givepoint/internal/gateway"
	"givepoint/internal/reward"
)

// State of the callback machine. Terminal states are display-only; nothing
// transitions out of them.
type State string

const (
	StateIdle      State = "idle"
	StateParsing   State = "parsing"
	StateVerifying State = "verifying"
	StateRecording State = "recording"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// FailureKind classifies a terminal failure for the result page.
type FailureKind string

const (
	FailureMissingField            FailureKind = "missing_field"
	FailureMalformedPayload        FailureKind = "malformed_payload"
	FailureVerificationFailed      FailureKind = "verification_failed"
	FailureVerificationUnreachable FailureKind = "verification_unreachable"
)

// Retryable reports whether reloading the callback page can help. Parse
// failures need a new redirect with a valid URL; a declined verification
// needs a fresh payment; only transport trouble is worth an immediate retry.
func (k FailureKind) Retryable() bool {
	return k == FailureVerificationUnreachable
}

// Request is one redirect-load event.
type Request struct {
	RawURL     string
	Gateway    gateway.Gateway
	CampaignID string
	UserID     string
}

// RecordRequest is the donation-creation call issued once per verified
// transaction.
type RecordRequest struct {
	CampaignID     string
	UserID         string
	Amount         float64
	PaymentMethod  string
	TransactionRef string
	GatewayOrderID string
	IsAnonymous    bool
	Message        string
}

// RecordOutcome is the recorder's answer. Duplicate means the donation
// already existed from a prior redirect with the same transaction reference;
// that is a success, not an error.
type RecordOutcome struct {
	DonationID string
	Duplicate  bool
	Reward     *reward.Accrual
}

// Recorder persists a donation exactly once per verified transaction.
type Recorder interface {
	Record(ctx context.Context, req *RecordRequest) (*RecordOutcome, error)
}

// RewardReader fetches the donor's reward summary after a recorded donation.
type RewardReader interface {
	Summary(ctx context.Context, userID string) (*reward.Summary, error)
}

// Auditor receives lifecycle notifications for the payment-event trail. All
// calls are best-effort; failures are logged and never block the machine.
type Auditor interface {
	Verified(ctx context.Context, req *RecordRequest) error
	Recorded(ctx context.Context, transactionRef string) error
	Unrecorded(ctx context.Context, transactionRef string, cause error) error
}

// Result is the terminal outcome surfaced to the result page.
type Result struct {
	State       State
	Failure     FailureKind
	Message     string
	Transaction *gateway.NormalizedTransaction
	Outcome     *RecordOutcome
	Reward      *reward.Summary

	// RecordingDeferred: the payment verified but the donation row could not
	// be written; the reconciler will catch up. Shown as success.
	RecordingDeferred bool

	// Reentrant: this call lost the guard race and returned the state of the
	// invocation that won; no work was performed.
	Reentrant bool
}

// Controller drives one callback invocation through the state machine.
// Construct one per redirect load and discard it after the terminal state;
// no global mutable state is involved.
type Controller struct {
	verifiers map[gateway.Gateway]gateway.Verifier
	recorder  Recorder
	rewards   RewardReader
	auditor   Auditor
	cache     VerifiedCache
	logger    *zap.Logger

	guard  ProcessingGuard
	mu     sync.Mutex
	state  State
	result *Result
}

func NewController(
	verifiers map[gateway.Gateway]gateway.Verifier,
	recorder Recorder,
	rewards RewardReader,
	auditor Auditor,
	cache VerifiedCache,
	logger *zap.Logger,
) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		verifiers: verifiers,
		recorder:  recorder,
		rewards:   rewards,
		auditor:   auditor,
		cache:     cache,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the machine's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run executes the machine for one redirect-load event. Re-entrant calls
// (duplicate triggering while an invocation is in flight, or after success)
// are no-ops that observe the first invocation's outcome.
func (c *Controller) Run(ctx context.Context, req *Request) *Result {
	if !c.guard.TryBegin() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.result != nil {
			out := *c.result
			out.Reentrant = true
			return &out
		}
		return &Result{State: c.state, Reentrant: true}
	}

	res := c.run(ctx, req)

	c.mu.Lock()
	c.result = res
	c.mu.Unlock()

	// The guard stays set permanently after success; a failed invocation
	// reopens it so a page reload can retry.
	if res.State == StateFailed {
		c.guard.Reset()
	}
	return res
}

func (c *Controller) run(ctx context.Context, req *Request) *Result {
	// Parsing
	c.setState(StateParsing)
	txn, err := gateway.Normalize(req.RawURL, req.Gateway)
	if err != nil {
		return c.fail(parseFailure(err), err.Error(), nil)
	}

	// Verifying
	c.setState(StateVerifying)
	verifier, ok := c.verifiers[req.Gateway]
	if !ok {
		return c.fail(FailureVerificationUnreachable, "no verifier configured for gateway "+string(req.Gateway), txn)
	}

	verdict := c.verify(ctx, verifier, txn)
	switch verdict.Status {
	case gateway.StatusVerified:
		// fall through to recording
	case gateway.StatusUnknown:
		c.logger.Warn("payment verification unreachable",
			zap.String("gateway", verifier.Name()),
			zap.String("transaction_ref", txn.TransactionRef),
			zap.String("message", verdict.Message))
		return c.fail(FailureVerificationUnreachable, verdict.Message, txn)
	default:
		c.logger.Info("payment verification declined",
			zap.String("gateway", verifier.Name()),
			zap.String("transaction_ref", txn.TransactionRef),
			zap.String("message", verdict.Message))
		return c.fail(FailureVerificationFailed, verdict.Message, txn)
	}

	amount := txn.Amount
	if verdict.VerifiedAmount != nil {
		amount = *verdict.VerifiedAmount
	}

	record := &RecordRequest{
		CampaignID:     req.CampaignID,
		UserID:         req.UserID,
		Amount:         amount,
		PaymentMethod:  verifier.Name(),
		TransactionRef: txn.TransactionRef,
		GatewayOrderID: txn.GatewayOrderID,
		IsAnonymous:    req.UserID == "",
	}

	if c.cache != nil {
		if err := c.cache.Mark(ctx, txn.TransactionRef); err != nil {
			c.logger.Warn("verified-cache mark failed", zap.Error(err))
		}
	}
	c.audit(func() error { return c.auditor.Verified(ctx, record) })

	// Recording
	c.setState(StateRecording)
	outcome, recErr := c.recorder.Record(ctx, record)
	if recErr != nil {
		// The money already cleared; the user must not see a failure for a
		// bookkeeping problem. The reconciler picks the event up later.
		c.logger.Error("donation recording failed after verification",
			zap.String("transaction_ref", txn.TransactionRef),
			zap.Error(recErr))
		c.audit(func() error { return c.auditor.Unrecorded(ctx, txn.TransactionRef, recErr) })

		c.setState(StateSucceeded)
		return &Result{
			State:             StateSucceeded,
			Transaction:       txn,
			RecordingDeferred: true,
		}
	}

	c.audit(func() error { return c.auditor.Recorded(ctx, txn.TransactionRef) })

	c.setState(StateSucceeded)
	res := &Result{
		State:       StateSucceeded,
		Transaction: txn,
		Outcome:     outcome,
	}

	// Reward state is fetched only after a recorded donation, never
	// speculatively. A fetch failure does not demote the success.
	if req.UserID != "" && c.rewards != nil {
		summary, err := c.rewards.Summary(ctx, req.UserID)
		if err != nil {
			c.logger.Warn("reward summary fetch failed",
				zap.String("user_id", req.UserID),
				zap.Error(err))
		} else {
			res.Reward = summary
		}
	}
	return res
}

// verify consults the cross-instance verified cache before hitting the
// gateway: a repeated redirect for an already-verified reference skips the
// RPC and proceeds to the duplicate-tolerant recording step.
func (c *Controller) verify(ctx context.Context, verifier gateway.Verifier, txn *gateway.NormalizedTransaction) *gateway.Verdict {
	if c.cache != nil {
		seen, err := c.cache.Seen(ctx, txn.TransactionRef)
		if err != nil {
			c.logger.Warn("verified-cache lookup failed", zap.Error(err))
		} else if seen {
			return &gateway.Verdict{Status: gateway.StatusVerified}
		}
	}
	return verifier.Verify(ctx, txn)
}

func (c *Controller) fail(kind FailureKind, message string, txn *gateway.NormalizedTransaction) *Result {
	c.setState(StateFailed)
	return &Result{
		State:       StateFailed,
		Failure:     kind,
		Message:     message,
		Transaction: txn,
	}
}

func (c *Controller) audit(fn func() error) {
	if c.auditor == nil {
		return
	}
	if err := fn(); err != nil {
		c.logger.Warn("payment event audit failed", zap.Error(err))
	}
}

func parseFailure(err error) FailureKind {
	var perr *gateway.ParseError
	if errors.As(err, &perr) && perr.Kind == gateway.MalformedPayload {
		return FailureMalformedPayload
	}
	return FailureMissingField
}
