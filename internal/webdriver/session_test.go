package webdriver

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriverServer runs an HTTP server standing in for chromedriver and
// returns a Driver pointing at it.
func fakeDriverServer(t *testing.T, handler http.Handler) *Driver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	port := server.Listener.Addr().(*net.TCPAddr).Port
	return NewDriver("", port)
}

func TestNewSession_SendsHeadlessCapabilities(t *testing.T) {
	var gotBody []byte
	driver := fakeDriverServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/session", r.URL.Path)
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]any{"sessionId": "abc123"},
		})
	}))

	session, err := driver.NewSession()

	require.NoError(t, err)
	assert.Equal(t, "abc123", session.ID)
	assert.Contains(t, string(gotBody), "--headless")
	assert.Contains(t, string(gotBody), "--window-size=1920,1080")
	assert.Contains(t, string(gotBody), `"browserName":"chrome"`)
}

func TestNewSession_ServerError(t *testing.T) {
	driver := fakeDriverServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not created", http.StatusInternalServerError)
	}))

	_, err := driver.NewSession()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not created")
}

func TestNewSession_MissingSessionID(t *testing.T) {
	driver := fakeDriverServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"value":{}}`)
	}))

	_, err := driver.NewSession()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session id")
}

func TestSessionDelete(t *testing.T) {
	deleted := false
	driver := fakeDriverServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			assert.Equal(t, "/session/abc123", r.URL.Path)
			deleted = true
			io.WriteString(w, `{"value":null}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]any{"sessionId": "abc123"},
		})
	}))

	session, err := driver.NewSession()
	require.NoError(t, err)

	require.NoError(t, session.Delete())
	assert.True(t, deleted)
}
