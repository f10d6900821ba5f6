package gateway

import (
	"context"
	"strings"
)

// Gateway identifies a supported payment gateway. The redirect URL carries
// the discriminator in the `gateway` query parameter ("A" or "B");
// GatewayA is the default when the parameter is absent or unrecognized.
type Gateway string

const (
	GatewayA Gateway = "A"
	GatewayB Gateway = "B"
)

// ParseGateway maps the redirect discriminator onto a Gateway.
func ParseGateway(s string) Gateway {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B", "GATEWAYB":
		return GatewayB
	default:
		return GatewayA
	}
}

// Verdict status values.
//
// StatusFailed means the gateway responded and the payment did not complete:
// retrying is pointless without a fresh payment. StatusUnknown means the
// verification RPC itself could not be completed; the caller may retry.
type Status string

const (
	StatusVerified Status = "verified"
	StatusFailed   Status = "failed"
	StatusUnknown  Status = "unknown"
)

// Verdict is the canonical outcome of a server-side verification call,
// normalized from the heterogeneous per-gateway response shapes.
type Verdict struct {
	Status         Status
	VerifiedAmount *float64
	Message        string
}

// Verifier confirms a transaction actually cleared at a gateway.
type Verifier interface {
	// Name returns the gateway identifier used as the donation payment method.
	Name() string

	// Verify asks the gateway whether the transaction completed. It never
	// returns an error: transport failures surface as StatusUnknown.
	Verify(ctx context.Context, txn *NormalizedTransaction) *Verdict
}

// completedSpellings are the known "payment completed" status values across
// both gateways, compared case-insensitively.
var completedSpellings = []string{
	"completed",
	"complete",
	"success",
	"succeeded",
	"ok",
}

// statusFieldNames is the ordered candidate list for the status field in
// verification responses (field names and casing differ per gateway).
var statusFieldNames = []string{
	"status",
	"Status",
	"state",
	"transaction_status",
	"payment_status",
}

// isCompleted reports whether a raw status string is a known completed spelling.
func isCompleted(raw string) bool {
	for _, s := range completedSpellings {
		if strings.EqualFold(raw, s) {
			return true
		}
	}
	return false
}

// extractStatus pulls the first present status candidate out of a decoded
// verification response.
func extractStatus(resp map[string]interface{}) (string, bool) {
	for _, name := range statusFieldNames {
		if v, ok := resp[name]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// extractNumber pulls the first present numeric candidate out of a decoded
// verification response. JSON numbers decode as float64; some gateways send
// amounts as strings.
func extractNumber(resp map[string]interface{}, names ...string) (float64, bool) {
	for _, name := range names {
		v, ok := resp[name]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if f, err := parseAmountString(n); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
