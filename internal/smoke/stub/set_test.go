package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestSet(t *testing.T) (*Set, *State) {
	state := NewState()
	set := NewSet(state, Ports{})
	require.NoError(t, set.Start(context.Background()))
	t.Cleanup(func() {
		set.Stop(context.Background())
	})
	return set, state
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSetStartBindsEphemeralPorts(t *testing.T) {
	set, _ := startTestSet(t)

	for _, srv := range set.servers() {
		assert.True(t, srv.IsRunning())
		assert.NotZero(t, srv.Port())
	}
}

func TestSetStopIsIdempotent(t *testing.T) {
	state := NewState()
	set := NewSet(state, Ports{})
	require.NoError(t, set.Start(context.Background()))

	assert.NoError(t, set.Stop(context.Background()))
	assert.NoError(t, set.Stop(context.Background()))
	assert.False(t, set.Webhook.IsRunning())
}

func TestWebhookRecordsDeliveries(t *testing.T) {
	set, state := startTestSet(t)
	url := fmt.Sprintf("http://localhost:%d/hook", set.Webhook.Port())

	resp, decoded := postJSON(t, url, `{"status":"firing"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"ok": true}, decoded)

	require.Equal(t, 1, state.DeliveryCount())
	delivery := state.Deliveries()[0]
	assert.Equal(t, "/hook", delivery.Path)
	assert.Equal(t, `{"status":"firing"}`, delivery.Body)
}

func TestWebhookRejectsGet(t *testing.T) {
	set, state := startTestSet(t)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/hook", set.Webhook.Port()))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, state.DeliveryCount())
}

func TestChatBotAcknowledgesAnyPath(t *testing.T) {
	set, _ := startTestSet(t)

	for _, path := range []string{"/botTESTTOKEN/sendMessage", "/anything"} {
		resp, decoded := postJSON(t, fmt.Sprintf("http://localhost:%d%s", set.ChatBot.Port(), path), `{}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]interface{}{"ok": true}, decoded)
	}
}

func TestMessagingAcknowledges(t *testing.T) {
	set, _ := startTestSet(t)

	resp, decoded := postJSON(t, fmt.Sprintf("http://localhost:%d/lark", set.Messaging.Port()), `{"msg_type":"text"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decoded["code"])
	assert.Equal(t, "success", decoded["msg"])
}

func queryMetrics(t *testing.T, set *Set) map[string]interface{} {
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/api/v1/query?query=up", set.Metrics.Port()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestMetricsFollowsFiringState(t *testing.T) {
	set, state := startTestSet(t)

	decoded := queryMetrics(t, set)
	assert.Equal(t, "success", decoded["status"])
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "vector", data["resultType"])
	require.Len(t, data["result"], 1)

	sample := data["result"].([]interface{})[0].(map[string]interface{})
	metric := sample["metric"].(map[string]interface{})
	assert.Equal(t, "up", metric["__name__"])
	value := sample["value"].([]interface{})
	require.Len(t, value, 2)
	assert.Equal(t, "1", value[1])

	state.SetFiring(false)
	decoded = queryMetrics(t, set)
	data = decoded["data"].(map[string]interface{})
	assert.Empty(t, data["result"])
}

func TestMetricsUnknownPath(t *testing.T) {
	set, _ := startTestSet(t)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/metrics", set.Metrics.Port()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerDoubleStart(t *testing.T) {
	srv := NewServer("double", 0, http.NotFoundHandler())
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop(context.Background())

	assert.Error(t, srv.Start(context.Background()))
}

func TestServerWaitForReady(t *testing.T) {
	srv := NewServer("ready", 0, http.NotFoundHandler())
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop(context.Background())

	assert.NoError(t, srv.WaitForReady(context.Background()))
}
