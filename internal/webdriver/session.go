package webdriver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/michael-kerscher/run-evaluator/internal/logger"
)

// Browser arguments applied to every session. The evaluator inspects
// rendered geometry, so the viewport is pinned.
var chromeArgs = []string{"--headless", "--window-size=1920,1080"}

// Session is a browser session created on a running Driver.
type Session struct {
	ID string

	driver *Driver
}

type newSessionRequest struct {
	Capabilities capabilities `json:"capabilities"`
}

type capabilities struct {
	AlwaysMatch alwaysMatch `json:"alwaysMatch"`
}

type alwaysMatch struct {
	BrowserName   string        `json:"browserName"`
	ChromeOptions chromeOptions `json:"goog:chromeOptions"`
}

type chromeOptions struct {
	Args []string `json:"args"`
}

type newSessionResponse struct {
	Value struct {
		SessionID string `json:"sessionId"`
	} `json:"value"`
}

// NewSession creates a headless 1920x1080 browser session over the wire
// protocol. The session stays alive until Delete is called or the driver
// process exits.
func (d *Driver) NewSession() (*Session, error) {
	body, err := json.Marshal(newSessionRequest{
		Capabilities: capabilities{
			AlwaysMatch: alwaysMatch{
				BrowserName:   "chrome",
				ChromeOptions: chromeOptions{Args: chromeArgs},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(d.URL()+"/session", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create session: %s: %s", resp.Status, data)
	}

	var parsed newSessionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}
	if parsed.Value.SessionID == "" {
		return nil, fmt.Errorf("create session: no session id in response: %s", data)
	}

	logger.Debug("created browser session %s", parsed.Value.SessionID)
	return &Session{ID: parsed.Value.SessionID, driver: d}, nil
}

// Delete ends the browser session.
func (s *Session) Delete() error {
	req, err := http.NewRequest(http.MethodDelete, s.driver.URL()+"/session/"+s.ID, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete session: %s", resp.Status)
	}
	return nil
}
