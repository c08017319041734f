package smoke

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(base string) *Client {
	return NewClient(base, 5*time.Second, NewStdoutLogger(false, false))
}

func TestClientCallDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/5", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":5,"name":"tmpl"}}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Call(context.Background(), http.MethodGet, "/templates/5", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "5", result.ID(), "numeric ids must normalize to strings")
	assert.Equal(t, "tmpl", stringField(result.Data(), "name"))
}

func TestClientCallSendsBodyAndAuth(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data":{"id":"x"}}`))
	}))
	defer srv.Close()

	auth := NewAuthContext("secret-token")
	_, err := testClient(srv.URL).Call(context.Background(), http.MethodPost, "/channels", map[string]interface{}{
		"name": "ch",
	}, auth)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, map[string]interface{}{"name": "ch"}, gotBody)
}

func TestClientCallRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid name"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Call(context.Background(), http.MethodPost, "/channels", nil, nil)
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadRequest, remote.StatusCode)
	assert.Contains(t, remote.Body, "invalid name")
	assert.Contains(t, remote.Error(), "HTTP 400")
}

func TestClientCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := testClient(base).Call(context.Background(), http.MethodGet, "/statistics", nil, nil)
	require.Error(t, err)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestClientCallEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Call(context.Background(), http.MethodDelete, "/templates/1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin", body["username"])
		w.Write([]byte(`{"data":{"token":"tok-1","user":{"id":"u-1"}}}`))
	}))
	defer srv.Close()

	auth, err := testClient(srv.URL).Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", auth.Token)
	assert.Equal(t, "Bearer tok-1", auth.Header.Get("Authorization"))
}

func TestClientLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Login(context.Background(), "admin", "admin123")
	require.Error(t, err)

	var assertion *AssertionError
	assert.ErrorAs(t, err, &assertion)
}

func TestResultRows(t *testing.T) {
	var result Result
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"data":[{"id":1,"name":"a"},{"id":"b2"}],"total":2}}`), &result))

	rows := result.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "1", stringField(rows[0], "id"))
	assert.Equal(t, "b2", stringField(rows[1], "id"))
}

func TestResultRowsAbsent(t *testing.T) {
	assert.Nil(t, Result{}.Rows())
	assert.Nil(t, Result{"data": map[string]interface{}{}}.Rows())
	assert.Nil(t, Result{"data": "not an object"}.Rows())
}

func TestStringFieldNormalization(t *testing.T) {
	m := map[string]interface{}{
		"str":   "abc",
		"int":   float64(42),
		"big":   float64(1755000000),
		"frac":  float64(0.5),
		"null":  nil,
		"truth": true,
	}
	assert.Equal(t, "abc", stringField(m, "str"))
	assert.Equal(t, "42", stringField(m, "int"))
	assert.Equal(t, "1755000000", stringField(m, "big"))
	assert.Equal(t, "0.5", stringField(m, "frac"))
	assert.Equal(t, "", stringField(m, "null"))
	assert.Equal(t, "", stringField(m, "missing"))
	assert.Equal(t, "true", stringField(m, "truth"))
	assert.Equal(t, "", stringField(nil, "anything"))
}
