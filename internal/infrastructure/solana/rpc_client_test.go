package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcTestServer(t *testing.T, method string, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, method, req.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func TestHTTPClient_GetTransaction(t *testing.T) {
	server := rpcTestServer(t, "getTransaction", map[string]interface{}{
		"slot":      int64(123456),
		"blockTime": int64(1700000000),
		"meta": map[string]interface{}{
			"err":         nil,
			"logMessages": []string{"Program log: transfer"},
		},
		"transaction": map[string]interface{}{
			"message": map[string]interface{}{
				"accountKeys": []string{"ServiceKey", "ClaimantKey", "MintKey"},
				"header":      map[string]interface{}{"numRequiredSignatures": 2},
			},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "sig123")
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, int64(123456), tx.Slot)
	assert.False(t, tx.Failed)
	assert.Equal(t, []string{"ServiceKey", "ClaimantKey", "MintKey"}, tx.AccountKeys)
	assert.Equal(t, 2, tx.NumSigners)
}

func TestHTTPClient_GetTransaction_NotFound(t *testing.T) {
	server := rpcTestServer(t, "getTransaction", nil)
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestHTTPClient_GetTransaction_FailedMeta(t *testing.T) {
	server := rpcTestServer(t, "getTransaction", map[string]interface{}{
		"slot": int64(1),
		"meta": map[string]interface{}{
			"err": map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "sig")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.True(t, tx.Failed)
}

func TestHTTPClient_GetSignaturesForAddress(t *testing.T) {
	server := rpcTestServer(t, "getSignaturesForAddress", []map[string]interface{}{
		{"signature": "newest", "slot": int64(10)},
		{"signature": "older", "slot": int64(9)},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sigs, err := client.GetSignaturesForAddress(context.Background(), "RefKey", &SignaturesOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "newest", sigs[0].Signature)
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := rpcTestServer(t, "getLatestBlockhash", map[string]interface{}{
		"value": map[string]interface{}{"blockhash": "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oAXxU8Fdkm4J6"},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	hash, err := client.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oAXxU8Fdkm4J6", hash)
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	server := rpcTestServer(t, "sendTransaction", "returned-signature")
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), "base64tx")
	require.NoError(t, err)
	assert.Equal(t, "returned-signature", sig)
}

func TestHTTPClient_GetTokenAccountBalance(t *testing.T) {
	server := rpcTestServer(t, "getTokenAccountBalance", map[string]interface{}{
		"value": map[string]interface{}{"amount": "250"},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	amount, err := client.GetTokenAccountBalance(context.Background(), "ATA")
	require.NoError(t, err)
	assert.Equal(t, uint64(250), amount)
}

func TestHTTPClient_RetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID, "result": int64(42),
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond), WithMaxRetries(2))
	var result int64
	require.NoError(t, client.call(context.Background(), "getSlot", nil, &result))
	assert.Equal(t, int64(42), result)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]interface{}{"code": -32602, "message": "invalid params"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	err := client.call(context.Background(), "getSlot", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_GetCompressedTokenAccountsByOwner(t *testing.T) {
	server := rpcTestServer(t, "getCompressedTokenAccountsByOwner", map[string]interface{}{
		"value": map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"account":   map[string]interface{}{"hash": "hash-1"},
					"tokenData": map[string]interface{}{"owner": "Owner", "mint": "Mint", "amount": "5"},
				},
			},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	accounts, err := client.GetCompressedTokenAccountsByOwner(context.Background(), "Owner", "Mint")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "hash-1", accounts[0].Hash)
	assert.Equal(t, uint64(5), accounts[0].Amount)
}

func TestHTTPClient_GetValidityProof(t *testing.T) {
	server := rpcTestServer(t, "getValidityProof", map[string]interface{}{
		"value": map[string]interface{}{
			"compressedProof": map[string]interface{}{
				"a": []byte{1, 2}, "b": []byte{3}, "c": []byte{4},
			},
			"roots": []string{"root-1"},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	proof, err := client.GetValidityProof(context.Background(), []string{"hash-1"})
	require.NoError(t, err)
	require.NotNil(t, proof)
	assert.Equal(t, []byte{1, 2, 3, 4}, proof.Proof)
	assert.Equal(t, "root-1", proof.Root)
}
