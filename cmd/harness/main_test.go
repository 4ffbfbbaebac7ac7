package main

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chainsafe/strategy-harness/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServer_Health(t *testing.T) {
	server := newServer(":0", &reportStore{}, zap.NewNop())

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	server := newServer(":0", &reportStore{}, zap.NewNop())

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Reports(t *testing.T) {
	results := &reportStore{}
	results.set([]*scenario.Report{
		{
			RunID:      "run-1",
			Scenario:   "deposit-harvest",
			Duration:   2 * time.Second,
			Deposit:    big.NewInt(1_000_000_000),
			UserShares: big.NewInt(1_000_000_000),
		},
		{
			RunID:    "run-2",
			Scenario: "emergency-exit",
			Err:      errors.New("strategy.harvest: transaction reverted"),
		},
	})
	server := newServer(":0", results, zap.NewNop())

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reports []reportView `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reports, 2)
	assert.Equal(t, "run-1", body.Reports[0].RunID)
	assert.Equal(t, "2s", body.Reports[0].Duration)
	assert.Equal(t, "1000000000", body.Reports[0].Deposit)
	assert.Empty(t, body.Reports[0].StrategyDebt)
	assert.Equal(t, "strategy.harvest: transaction reverted", body.Reports[1].Error)
}
