package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"givepoint/internal/pkg/httpclient"
)

// BetaVerifier verifies payments against GatewayB's transaction status RPC.
// Request: {gatewayOrderId, transactionRef, amount}; response carries a
// status field and the amount in base (major) units.
type BetaVerifier struct {
	baseURL     string
	productCode string
	client      *httpclient.Client
}

func NewBetaVerifier(baseURL, productCode, secretKey string) *BetaVerifier {
	return &BetaVerifier{
		baseURL:     baseURL,
		productCode: productCode,
		client: httpclient.New().
			WithTimeout(30 * time.Second).
			WithHeader("Authorization", "Key "+secretKey),
	}
}

func (v *BetaVerifier) Name() string {
	return "gateway_b"
}

func (v *BetaVerifier) Verify(ctx context.Context, txn *NormalizedTransaction) *Verdict {
	query := map[string]string{
		"product_code":     v.productCode,
		"transaction_uuid": txn.GatewayOrderID,
		"transaction_code": txn.TransactionRef,
		"total_amount":     strconv.FormatFloat(txn.Amount, 'f', -1, 64),
	}

	respBody, code, err := v.client.GetJSON(ctx, v.baseURL+"/api/epay/transaction/status/", query)
	if err != nil {
		return &Verdict{Status: StatusUnknown, Message: fmt.Sprintf("status request failed: %v", err)}
	}
	if !httpclient.IsSuccess(code) {
		return &Verdict{Status: StatusUnknown, Message: fmt.Sprintf("status returned HTTP %d", code)}
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return &Verdict{Status: StatusUnknown, Message: fmt.Sprintf("status parse error: %v", err)}
	}

	status, ok := extractStatus(resp)
	if !ok {
		return &Verdict{Status: StatusFailed, Message: "no status field in status response"}
	}
	if !isCompleted(status) {
		return &Verdict{Status: StatusFailed, Message: "payment status: " + status}
	}

	verdict := &Verdict{Status: StatusVerified}
	if major, ok := extractNumber(resp, "total_amount", "totalAmount", "amount"); ok {
		verdict.VerifiedAmount = &major
	}
	return verdict
}
