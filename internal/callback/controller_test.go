package callback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givepoint/internal/gateway"
	"givepoint/internal/reward"
)

type fakeVerifier struct {
	verdict gateway.Verdict
	calls   int32
}

func (f *fakeVerifier) Name() string { return "fake_gateway" }

func (f *fakeVerifier) Verify(_ context.Context, _ *gateway.NormalizedTransaction) *gateway.Verdict {
	atomic.AddInt32(&f.calls, 1)
	v := f.verdict
	return &v
}

type fakeRecorder struct {
	mu      sync.Mutex
	outcome *RecordOutcome
	err     error
	calls   int32
	last    *RecordRequest
}

func (f *fakeRecorder) Record(_ context.Context, req *RecordRequest) (*RecordOutcome, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &RecordOutcome{DonationID: "d-1"}, nil
}

type fakeRewards struct {
	summary *reward.Summary
	err     error
	calls   int32
}

func (f *fakeRewards) Summary(_ context.Context, _ string) (*reward.Summary, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.summary, f.err
}

type fakeAuditor struct {
	verified   int32
	recorded   int32
	unrecorded int32
}

func (f *fakeAuditor) Verified(_ context.Context, _ *RecordRequest) error {
	atomic.AddInt32(&f.verified, 1)
	return nil
}

func (f *fakeAuditor) Recorded(_ context.Context, _ string) error {
	atomic.AddInt32(&f.recorded, 1)
	return nil
}

func (f *fakeAuditor) Unrecorded(_ context.Context, _ string, _ error) error {
	atomic.AddInt32(&f.unrecorded, 1)
	return nil
}

type fixture struct {
	verifier *fakeVerifier
	recorder *fakeRecorder
	rewards  *fakeRewards
	auditor  *fakeAuditor
	cache    VerifiedCache
}

func newFixture() *fixture {
	return &fixture{
		verifier: &fakeVerifier{verdict: gateway.Verdict{Status: gateway.StatusVerified}},
		recorder: &fakeRecorder{},
		rewards:  &fakeRewards{summary: &reward.Summary{Points: 50}},
		auditor:  &fakeAuditor{},
	}
}

func (f *fixture) controller() *Controller {
	return NewController(
		map[gateway.Gateway]gateway.Verifier{gateway.GatewayA: f.verifier},
		f.recorder, f.rewards, f.auditor, f.cache, nil,
	)
}

func validRequest() *Request {
	return &Request{
		RawURL:     "https://give.example/payment/callback?gateway=A&pidx=P1&amount=500&campaignId=c1",
		Gateway:    gateway.GatewayA,
		CampaignID: "c1",
		UserID:     "u1",
	}
}

func TestRunSuccess(t *testing.T) {
	f := newFixture()
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.False(t, res.Reentrant)
	assert.False(t, res.RecordingDeferred)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, "P1", res.Transaction.TransactionRef)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, "d-1", res.Outcome.DonationID)
	require.NotNil(t, res.Reward)
	assert.Equal(t, 50, res.Reward.Points)

	assert.EqualValues(t, 1, f.verifier.calls)
	assert.EqualValues(t, 1, f.recorder.calls)
	assert.EqualValues(t, 1, f.auditor.verified)
	assert.EqualValues(t, 1, f.auditor.recorded)
	assert.EqualValues(t, 0, f.auditor.unrecorded)

	require.NotNil(t, f.recorder.last)
	assert.Equal(t, "c1", f.recorder.last.CampaignID)
	assert.Equal(t, "u1", f.recorder.last.UserID)
	assert.Equal(t, 500.0, f.recorder.last.Amount)
	assert.Equal(t, "fake_gateway", f.recorder.last.PaymentMethod)
	assert.False(t, f.recorder.last.IsAnonymous)
}

func TestRunVerifiedAmountOverridesRedirect(t *testing.T) {
	f := newFixture()
	amount := 750.0
	f.verifier.verdict.VerifiedAmount = &amount
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.Equal(t, 750.0, f.recorder.last.Amount)
}

func TestRunSecondInvocationIsReentrant(t *testing.T) {
	f := newFixture()
	c := f.controller()

	first := c.Run(context.Background(), validRequest())
	second := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, first.State)
	assert.Equal(t, StateSucceeded, second.State)
	assert.True(t, second.Reentrant)

	// The duplicate trigger performed no work.
	assert.EqualValues(t, 1, f.verifier.calls)
	assert.EqualValues(t, 1, f.recorder.calls)
}

func TestRunConcurrentInvocationsRecordOnce(t *testing.T) {
	f := newFixture()
	c := f.controller()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Run(context.Background(), validRequest())
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, f.recorder.calls)
}

func TestRunDuplicateDonationIsSuccess(t *testing.T) {
	f := newFixture()
	f.recorder.outcome = &RecordOutcome{DonationID: "d-1", Duplicate: true}
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.True(t, res.Outcome.Duplicate)
}

func TestRunParseFailure(t *testing.T) {
	f := newFixture()
	c := f.controller()

	res := c.Run(context.Background(), &Request{
		RawURL:  "https://give.example/payment/callback?gateway=A&pidx=P1",
		Gateway: gateway.GatewayA,
	})

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, FailureMissingField, res.Failure)
	assert.False(t, res.Failure.Retryable())
	assert.EqualValues(t, 0, f.verifier.calls)
	assert.EqualValues(t, 0, f.recorder.calls)
}

func TestRunVerificationDeclined(t *testing.T) {
	f := newFixture()
	f.verifier.verdict = gateway.Verdict{Status: gateway.StatusFailed, Message: "status Pending"}
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, FailureVerificationFailed, res.Failure)
	assert.False(t, res.Failure.Retryable())
	assert.EqualValues(t, 0, f.recorder.calls)
	assert.EqualValues(t, 0, f.auditor.verified)
}

func TestRunVerificationUnreachableIsRetryable(t *testing.T) {
	f := newFixture()
	f.verifier.verdict = gateway.Verdict{Status: gateway.StatusUnknown, Message: "connection refused"}
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, FailureVerificationUnreachable, res.Failure)
	assert.True(t, res.Failure.Retryable())
}

func TestRunFailureReopensGuard(t *testing.T) {
	f := newFixture()
	f.verifier.verdict = gateway.Verdict{Status: gateway.StatusUnknown}
	c := f.controller()

	res := c.Run(context.Background(), validRequest())
	require.Equal(t, StateFailed, res.State)

	// Gateway comes back up; a page reload runs the whole machine again.
	f.verifier.verdict = gateway.Verdict{Status: gateway.StatusVerified}
	res = c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.False(t, res.Reentrant)
	assert.EqualValues(t, 2, f.verifier.calls)
	assert.EqualValues(t, 1, f.recorder.calls)
}

func TestRunRecordingErrorIsDeferredSuccess(t *testing.T) {
	f := newFixture()
	f.recorder.err = errors.New("db down")
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.True(t, res.RecordingDeferred)
	assert.Nil(t, res.Outcome)
	assert.EqualValues(t, 1, f.auditor.verified)
	assert.EqualValues(t, 1, f.auditor.unrecorded)
	assert.EqualValues(t, 0, f.auditor.recorded)

	// Success is sticky even though recording failed; the reconciler owns it.
	second := c.Run(context.Background(), validRequest())
	assert.True(t, second.Reentrant)
	assert.EqualValues(t, 1, f.recorder.calls)
}

func TestRunAnonymousSkipsRewardFetch(t *testing.T) {
	f := newFixture()
	c := f.controller()

	req := validRequest()
	req.UserID = ""
	res := c.Run(context.Background(), req)

	assert.Equal(t, StateSucceeded, res.State)
	assert.Nil(t, res.Reward)
	assert.True(t, f.recorder.last.IsAnonymous)
	assert.EqualValues(t, 0, f.rewards.calls)
}

func TestRunRewardFetchFailureKeepsSuccess(t *testing.T) {
	f := newFixture()
	f.rewards.summary = nil
	f.rewards.err = errors.New("db timeout")
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.Nil(t, res.Reward)
}

func TestRunCacheHitSkipsVerifierRPC(t *testing.T) {
	f := newFixture()
	f.cache = newMemoryVerifiedCache(time.Hour)
	require.NoError(t, f.cache.Mark(context.Background(), "P1"))
	c := f.controller()

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateSucceeded, res.State)
	assert.EqualValues(t, 0, f.verifier.calls)
	assert.EqualValues(t, 1, f.recorder.calls)
}

func TestRunNoVerifierConfigured(t *testing.T) {
	f := newFixture()
	c := NewController(map[gateway.Gateway]gateway.Verifier{}, f.recorder, f.rewards, f.auditor, nil, nil)

	res := c.Run(context.Background(), validRequest())

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, FailureVerificationUnreachable, res.Failure)
}

func TestProcessingGuard(t *testing.T) {
	var g ProcessingGuard

	assert.False(t, g.Processed())
	assert.True(t, g.TryBegin())
	assert.False(t, g.TryBegin())
	assert.True(t, g.Processed())

	g.Reset()
	assert.True(t, g.TryBegin())
}
