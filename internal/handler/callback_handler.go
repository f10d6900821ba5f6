package handler

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"givepoint/internal/callback"
	"givepoint/internal/gateway"
	"givepoint/internal/middleware"
	"givepoint/internal/pkg/utils"
)

// CallbackHandler handles gateway redirect callbacks.
type CallbackHandler struct {
	verifiers map[gateway.Gateway]gateway.Verifier
	recorder  callback.Recorder
	rewards   callback.RewardReader
	auditor   callback.Auditor
	cache     callback.VerifiedCache
	baseURL   string
	logger    *zap.Logger
}

func NewCallbackHandler(
	verifiers map[gateway.Gateway]gateway.Verifier,
	recorder callback.Recorder,
	rewards callback.RewardReader,
	auditor callback.Auditor,
	cache callback.VerifiedCache,
	baseURL string,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		verifiers: verifiers,
		recorder:  recorder,
		rewards:   rewards,
		auditor:   auditor,
		cache:     cache,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// PaymentCallback processes the browser redirect from a payment gateway.
// One controller per invocation: the state machine is constructed here and
// discarded after it reaches a terminal state.
func (h *CallbackHandler) PaymentCallback(c echo.Context) error {
	req := &callback.Request{
		RawURL:     c.Request().URL.String(),
		Gateway:    gateway.ParseGateway(c.QueryParam("gateway")),
		CampaignID: c.QueryParam("campaignId"),
		UserID:     middleware.UserID(c),
	}

	controller := callback.NewController(h.verifiers, h.recorder, h.rewards, h.auditor, h.cache, h.logger)
	res := controller.Run(c.Request().Context(), req)

	if res.State == callback.StateSucceeded {
		return h.renderSuccess(c, req.CampaignID, res)
	}
	return h.renderFailure(c, req.CampaignID, res)
}

func (h *CallbackHandler) renderSuccess(c echo.Context, campaignID string, res *callback.Result) error {
	amount := 0.0
	ref := ""
	if res.Transaction != nil {
		amount = res.Transaction.Amount
		ref = res.Transaction.TransactionRef
	}

	message := "Thank you for your donation!"
	switch {
	case res.RecordingDeferred:
		message = "Your payment went through. The donation will show up in your history shortly."
	case res.Outcome != nil && res.Outcome.Duplicate:
		message = "This payment was already recorded. Thank you for your donation!"
	}

	pointsLine := ""
	if res.Outcome != nil && res.Outcome.Reward != nil && res.Outcome.Reward.PointsEarned > 0 {
		pointsLine = utils.FormatAmount(float64(res.Outcome.Reward.PointsEarned)) + " reward points earned"
		if res.Reward != nil {
			pointsLine += ", you are now " + res.Reward.Tier.Name
		}
	}

	return h.render(c, resultPage{
		Title:      "Payment successful",
		Message:    message,
		Reference:  ref,
		Amount:     amount > 0,
		AmountStr:  utils.FormatAmount(amount),
		Points:     pointsLine,
		BackURL:    h.backURL(campaignID),
		CanRetry:   false,
		Successful: true,
	})
}

func (h *CallbackHandler) renderFailure(c echo.Context, campaignID string, res *callback.Result) error {
	title := "Payment failed"
	message := "We could not confirm your payment."
	switch res.Failure {
	case callback.FailureMissingField, callback.FailureMalformedPayload:
		title = "Invalid payment response"
		message = "The payment provider sent an incomplete response. If you were charged, the donation will be reconciled automatically."
	case callback.FailureVerificationUnreachable:
		title = "Verification unavailable"
		message = "We could not reach the payment provider to confirm your payment. Please reload this page to try again."
	case callback.FailureVerificationFailed:
		message = "The payment was not completed. No money was captured; you can start a new donation from the campaign page."
	}

	ref := ""
	if res.Transaction != nil {
		ref = res.Transaction.TransactionRef
	}

	return h.render(c, resultPage{
		Title:     title,
		Message:   message,
		Reference: ref,
		BackURL:   h.backURL(campaignID),
		CanRetry:  res.Failure.Retryable(),
	})
}

func (h *CallbackHandler) backURL(campaignID string) string {
	if campaignID != "" {
		return h.baseURL + "/campaigns/" + campaignID
	}
	return h.baseURL + "/"
}

type resultPage struct {
	Title      string
	Message    string
	Reference  string
	Amount     bool
	AmountStr  string
	Points     string
	BackURL    string
	CanRetry   bool
	Successful bool
}

var resultTemplate = template.Must(template.New("payment-result").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: system-ui, sans-serif; background: #f2f2f2; margin: 0; padding: 20px; display: flex; justify-content: center; align-items: center; min-height: 100vh; }
        .box { background: #fff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); padding: 40px; text-align: center; max-width: 420px; width: 100%; }
        h1 { color: {{if .Successful}}#2e7d32{{else}}#c62828{{end}}; margin-bottom: 20px; }
        p { color: #666; margin-bottom: 10px; }
        a.btn { display: inline-block; margin-top: 20px; padding: 10px 24px; border-radius: 6px; background: #1565c0; color: #fff; text-decoration: none; }
    </style>
</head>
<body>
    <div class="box">
        <h1>{{.Title}}</h1>
        {{if .Reference}}<p>Transaction: <span>{{.Reference}}</span></p>{{end}}
        {{if .Amount}}<p>Amount: <span>{{.AmountStr}}</span></p>{{end}}
        <p>{{.Message}}</p>
        {{if .Points}}<p>{{.Points}}</p>{{end}}
        {{if .CanRetry}}<p>Reloading this page retries the confirmation.</p>{{end}}
        <a class="btn" href="{{.BackURL}}">Back to campaign</a>
    </div>
</body>
</html>`))

func (h *CallbackHandler) render(c echo.Context, page resultPage) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return resultTemplate.Execute(c.Response().Writer, page)
}
