package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"givepoint/internal/pkg/utils"
)

// NormalizedTransaction is the canonical result of parsing a gateway
// redirect. Constructed once per callback and read-only afterward.
type NormalizedTransaction struct {
	TransactionRef string
	GatewayOrderID string
	Amount         float64
}

// ParseError kinds.
type ParseErrorKind string

const (
	// MissingField: a required redirect parameter is absent (or, for
	// GatewayA, the amount is not a positive number).
	MissingField ParseErrorKind = "missing_field"
	// MalformedPayload: a parameter is present but cannot be decoded.
	MalformedPayload ParseErrorKind = "malformed_payload"
)

// ParseError is the typed failure of Normalize.
type ParseError struct {
	Kind    ParseErrorKind
	Gateway Gateway
	Field   string
	cause   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("gateway %s: %s %q", e.Gateway, e.Kind, e.Field)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

func missingField(gw Gateway, field string) *ParseError {
	return &ParseError{Kind: MissingField, Gateway: gw, Field: field}
}

func malformed(gw Gateway, field string, cause error) *ParseError {
	return &ParseError{Kind: MalformedPayload, Gateway: gw, Field: field, cause: cause}
}

// Redirect query parameter names.
const (
	// GatewayA sends discrete scalar parameters.
	paramARef    = "pidx"
	paramAOrder  = "purchase_order_id"
	paramAAmount = "amount"

	// GatewayB sends either a discrete pair or one opaque Base64(JSON) blob.
	paramBRef    = "refId"
	paramBOrder  = "oid"
	paramBAmount = "amt"
	paramBData   = "data"
)

// Ordered candidate field names for the transaction reference inside
// GatewayB's decoded payload. The primary name first, then documented
// synonyms seen across gateway API versions.
var bRefCandidates = []string{
	"transaction_code",
	"transactionCode",
	"transaction_uuid",
	"refId",
	"ref_id",
}

// Normalize turns a raw redirect URL into a NormalizedTransaction for the
// given gateway, or fails with a *ParseError. Pure function of its input.
func Normalize(rawURL string, gw Gateway) (*NormalizedTransaction, error) {
	query := queryValues(rawURL)

	if gw == GatewayB {
		return normalizeB(rawURL, query)
	}
	return normalizeA(query)
}

// queryValues parses every key=value pair after the first '?'. Re-escaped
// redirect URLs sometimes contain a second '?'; treating it as part of a
// value here is fine because GatewayB's opaque parameter is re-extracted
// from the raw URL anyway.
func queryValues(rawURL string) url.Values {
	idx := strings.Index(rawURL, "?")
	if idx < 0 {
		// Caller may pass just the query string.
		if strings.Contains(rawURL, "=") && !strings.Contains(rawURL, "://") {
			v, _ := url.ParseQuery(rawURL)
			return v
		}
		return url.Values{}
	}
	v, _ := url.ParseQuery(rawURL[idx+1:])
	return v
}

func normalizeA(query url.Values) (*NormalizedTransaction, error) {
	ref := query.Get(paramARef)
	if ref == "" {
		return nil, missingField(GatewayA, paramARef)
	}

	amountRaw := query.Get(paramAAmount)
	if amountRaw == "" {
		return nil, missingField(GatewayA, paramAAmount)
	}
	amount, err := utils.ParseAmount(amountRaw)
	if err != nil || amount <= 0 {
		return nil, missingField(GatewayA, paramAAmount)
	}

	orderID := query.Get(paramAOrder)
	if orderID == "" {
		orderID = ref
	}

	return &NormalizedTransaction{
		TransactionRef: ref,
		GatewayOrderID: orderID,
		Amount:         amount,
	}, nil
}

func normalizeB(rawURL string, query url.Values) (*NormalizedTransaction, error) {
	// Discrete pair present: no opaque blob to decode.
	if ref := query.Get(paramBRef); ref != "" {
		amount, perr := amountFromQuery(query)
		if perr != nil {
			return nil, perr
		}
		orderID := query.Get(paramBOrder)
		if orderID == "" {
			orderID = ref
		}
		return &NormalizedTransaction{
			TransactionRef: ref,
			GatewayOrderID: orderID,
			Amount:         amount,
		}, nil
	}

	raw, ok := extractRawParam(rawURL, paramBData)
	if !ok {
		return nil, missingField(GatewayB, paramBData)
	}

	decoded, err := decodeOpaque(raw)
	if err != nil {
		return nil, malformed(GatewayB, paramBData, err)
	}

	ref := firstNonEmpty(decoded, bRefCandidates)
	if ref == "" {
		return nil, missingField(GatewayB, bRefCandidates[0])
	}

	orderID, _ := stringField(decoded, "transaction_uuid")
	if orderID == "" {
		orderID = ref
	}

	// The query-string amount is authoritative (the merchant sets it at
	// redirect time); the decoded payload's total is only a fallback.
	amount, perr := amountFromQuery(query)
	if perr != nil {
		total, ok := extractNumber(decoded, "total_amount", "totalAmount", "amount")
		if !ok || total <= 0 {
			return nil, perr
		}
		amount = total
	}

	return &NormalizedTransaction{
		TransactionRef: ref,
		GatewayOrderID: orderID,
		Amount:         amount,
	}, nil
}

func amountFromQuery(query url.Values) (float64, *ParseError) {
	raw := query.Get(paramBAmount)
	// A re-escaped second '?' folds the rest of the URL into this value;
	// the numeric part before it is what the merchant set.
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return 0, missingField(GatewayB, paramBAmount)
	}
	amount, err := utils.ParseAmount(raw)
	if err != nil {
		return 0, malformed(GatewayB, paramBAmount, err)
	}
	if amount <= 0 {
		return 0, malformed(GatewayB, paramBAmount, fmt.Errorf("non-positive amount %v", amount))
	}
	return amount, nil
}

// Extraction patterns for the opaque parameter, tried in order. The value is
// taken from the raw URL rather than the parsed parameter map because
// re-escaped redirects can contain a second '?' that url.ParseQuery folds
// into the preceding value.
var rawParamPatterns = []string{
	`^%s=([^&]*)`,
	`&%s=([^&]*)`,
	`\?%s=([^&]*)`,
}

func extractRawParam(rawURL, key string) (string, bool) {
	for _, p := range rawParamPatterns {
		re := regexp.MustCompile(fmt.Sprintf(p, regexp.QuoteMeta(key)))
		if m := re.FindStringSubmatch(rawURL); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// decodeOpaque recovers the JSON object from GatewayB's opaque parameter:
// up to two layers of percent-encoding, then Base64, then JSON. Each
// unescape pass keeps the previous result when it fails, so 0, 1, or 2
// layers all decode without destroying the payload.
func decodeOpaque(raw string) (map[string]interface{}, error) {
	pass1, err := url.QueryUnescape(raw)
	if err != nil {
		pass1 = raw
	}
	pass2, err := url.QueryUnescape(pass1)
	if err != nil {
		pass2 = pass1
	}

	data, err := decodeBase64(pass2)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return obj, nil
}

// decodeBase64 tolerates both standard and URL-safe alphabets, with or
// without padding. An unescape pass turns '+' into ' ' without erroring, so
// interior spaces are mapped back before decoding; base64 never contains a
// legitimate space.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "+")
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func firstNonEmpty(obj map[string]interface{}, candidates []string) string {
	for _, name := range candidates {
		if s, ok := stringField(obj, name); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringField(obj map[string]interface{}, name string) (string, bool) {
	v, ok := obj[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func parseAmountString(s string) (float64, error) {
	return utils.ParseAmount(s)
}
