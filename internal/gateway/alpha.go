package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"givepoint/internal/pkg/httpclient"
)

// GatewayA expresses amounts in hundredths of the base currency unit.
const gatewayAMinorUnitDivisor = 100

// AlphaVerifier verifies payments against GatewayA's lookup RPC.
// Request: {transactionRef}; response carries a status field and the
// captured amount in minor units.
type AlphaVerifier struct {
	baseURL   string
	secretKey string
	client    *httpclient.Client
}

func NewAlphaVerifier(baseURL, secretKey string) *AlphaVerifier {
	return &AlphaVerifier{
		baseURL:   baseURL,
		secretKey: secretKey,
		client: httpclient.New().
			WithTimeout(30 * time.Second).
			WithHeader("Authorization", "Key "+secretKey),
	}
}

func (v *AlphaVerifier) Name() string {
	return "gateway_a"
}

func (v *AlphaVerifier) Verify(ctx context.Context, txn *NormalizedTransaction) *Verdict {
	body := map[string]interface{}{
		"pidx": txn.TransactionRef,
	}

	respBody, code, err := v.client.PostJSON(ctx, v.baseURL+"/epayment/lookup/", body)
	if err != nil {
		return &Verdict{Status: StatusUnknown, Message: fmt.Sprintf("lookup request failed: %v", err)}
	}
	if !httpclient.IsSuccess(code) {
		return &Verdict{Status: StatusUnknown, Message: fmt.Sprintf("lookup returned HTTP %d", code)}
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return &Verdict{Status: StatusUnknown, Message: fmt.Sprintf("lookup parse error: %v", err)}
	}

	status, ok := extractStatus(resp)
	if !ok {
		return &Verdict{Status: StatusFailed, Message: "no status field in lookup response"}
	}
	if !isCompleted(status) {
		return &Verdict{Status: StatusFailed, Message: "payment status: " + status}
	}

	verdict := &Verdict{Status: StatusVerified}
	if minor, ok := extractNumber(resp, "total_amount", "amount"); ok {
		major := minor / gatewayAMinorUnitDivisor
		verdict.VerifiedAmount = &major
	}
	return verdict
}
