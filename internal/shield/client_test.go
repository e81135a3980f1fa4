package shield

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSendsExpectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/honeypot/check", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0xTOKEN", body["token_address"])
		assert.Equal(t, float64(56), body["chain_id"])
		assert.Equal(t, "0.1", body["test_amount_eth"])

		w.Write([]byte(`{"success":true,"data":{
			"is_honeypot":false,
			"risk_score":25,
			"buy_success":true,
			"sell_success":true,
			"buy_tax_percent":2.5,
			"sell_tax_percent":3.0
		}}`))
	}))
	defer srv.Close()

	verdict, err := NewClient(srv.URL).Check(context.Background(), "0xTOKEN", 56)
	require.NoError(t, err)
	assert.False(t, verdict.IsHoneypot)
	assert.Equal(t, 25, verdict.RiskScore)
	assert.True(t, verdict.BuySuccess)
	assert.Equal(t, 2.5, verdict.BuyTaxPercent)
}

func TestCheckErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":{"message":"simulation node unavailable"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Check(context.Background(), "0xTOKEN", 56)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation node unavailable")
}

func TestCheckMissingVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Check(context.Background(), "0xTOKEN", 56)
	require.Error(t, err, "success without a verdict body still fails")
}

func TestCheckNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Check(context.Background(), "0xTOKEN", 56)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
