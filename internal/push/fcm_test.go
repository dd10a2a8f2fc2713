package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToToken(t *testing.T) {
	var got sendRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient("secret", ts.URL)
	err := c.SendToToken(context.Background(), "tok-1",
		Message{Title: "Hi", Body: "There"}, map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, "tok-1", got.To)
	assert.Equal(t, "Hi", got.Notification.Title)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, "v", got.Data["k"])
}

func TestSendToToken_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient("bad-key", ts.URL)
	err := c.SendToToken(context.Background(), "tok-1", Message{}, nil)
	assert.Error(t, err)
}

func TestSendToTokens_CountsOutcomes(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls%2 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient("secret", ts.URL)
	result := c.SendToTokens(context.Background(), []string{"a", "b", "c", "d"}, Message{}, nil)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
}

func TestUnconfiguredClientIsNoop(t *testing.T) {
	c := NewClient("", "http://unused")
	require.Nil(t, c)

	// Methods on the nil client must not panic.
	assert.NoError(t, c.SendToToken(context.Background(), "tok", Message{}, nil))
	result := c.SendToTokens(context.Background(), []string{"a"}, Message{}, nil)
	assert.Equal(t, 1, result.Success)
}
