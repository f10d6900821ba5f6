package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(status int, body map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func testTxn() *NormalizedTransaction {
	return &NormalizedTransaction{
		TransactionRef: "TXN-1",
		GatewayOrderID: "ORD-1",
		Amount:         500,
	}
}

func TestAlphaVerifierCompleted(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, map[string]interface{}{
		"status":       "Completed",
		"total_amount": 50000.0, // minor units
	}))
	defer srv.Close()

	v := NewAlphaVerifier(srv.URL, "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusVerified, verdict.Status)
	require.NotNil(t, verdict.VerifiedAmount)
	assert.Equal(t, 500.0, *verdict.VerifiedAmount)
}

func TestAlphaVerifierStatusCaseInsensitive(t *testing.T) {
	for _, status := range []string{"COMPLETED", "completed", "Completed"} {
		srv := httptest.NewServer(jsonHandler(http.StatusOK, map[string]interface{}{
			"status": status,
		}))
		v := NewAlphaVerifier(srv.URL, "secret")
		verdict := v.Verify(context.Background(), testTxn())
		srv.Close()

		assert.Equal(t, StatusVerified, verdict.Status, "status %q", status)
	}
}

func TestAlphaVerifierPendingIsFailed(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, map[string]interface{}{
		"status": "Pending",
	}))
	defer srv.Close()

	v := NewAlphaVerifier(srv.URL, "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusFailed, verdict.Status)
	assert.Contains(t, verdict.Message, "Pending")
}

func TestAlphaVerifierHTTPErrorIsUnknown(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusInternalServerError, map[string]interface{}{
		"error": "boom",
	}))
	defer srv.Close()

	v := NewAlphaVerifier(srv.URL, "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusUnknown, verdict.Status)
}

func TestAlphaVerifierUnreachableIsUnknown(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, nil))
	srv.Close() // reachable address, refused connection

	v := NewAlphaVerifier(srv.URL, "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusUnknown, verdict.Status)
}

func TestBetaVerifierComplete(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"product_code":     r.URL.Query().Get("product_code"),
			"transaction_uuid": r.URL.Query().Get("transaction_uuid"),
			"transaction_code": r.URL.Query().Get("transaction_code"),
		}
		jsonHandler(http.StatusOK, map[string]interface{}{
			"status":       "COMPLETE",
			"total_amount": 500.0, // major units
		})(w, r)
	}))
	defer srv.Close()

	v := NewBetaVerifier(srv.URL, "GIVE-001", "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusVerified, verdict.Status)
	require.NotNil(t, verdict.VerifiedAmount)
	assert.Equal(t, 500.0, *verdict.VerifiedAmount)

	assert.Equal(t, "GIVE-001", gotQuery["product_code"])
	assert.Equal(t, "ORD-1", gotQuery["transaction_uuid"])
	assert.Equal(t, "TXN-1", gotQuery["transaction_code"])
}

func TestBetaVerifierAlternateStatusField(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, map[string]interface{}{
		"transaction_status": "Success",
	}))
	defer srv.Close()

	v := NewBetaVerifier(srv.URL, "GIVE-001", "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusVerified, verdict.Status)
}

func TestBetaVerifierPendingIsFailed(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, map[string]interface{}{
		"status": "PENDING",
	}))
	defer srv.Close()

	v := NewBetaVerifier(srv.URL, "GIVE-001", "secret")
	verdict := v.Verify(context.Background(), testTxn())

	assert.Equal(t, StatusFailed, verdict.Status)
}

func TestVerdictHelpers(t *testing.T) {
	assert.True(t, isCompleted("Completed"))
	assert.True(t, isCompleted("COMPLETE"))
	assert.True(t, isCompleted("success"))
	assert.False(t, isCompleted("Pending"))
	assert.False(t, isCompleted(""))

	status, ok := extractStatus(map[string]interface{}{"state": "Completed"})
	assert.True(t, ok)
	assert.Equal(t, "Completed", status)

	_, ok = extractStatus(map[string]interface{}{"code": 100.0})
	assert.False(t, ok)

	n, ok := extractNumber(map[string]interface{}{"total_amount": "1,500"}, "total_amount")
	assert.True(t, ok)
	assert.Equal(t, 1500.0, n)
}
