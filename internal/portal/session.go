package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionManager manages the terminal's login session lifecycle. The session
// token expires server-side; callers always go through Token which logs in
// lazily when no valid token is held.
type SessionManager struct {
	mu          sync.RWMutex
	token       string
	lastLogin   time.Time
	expiresAt   time.Time
	lifetime    time.Duration
	baseURL     string
	username    string
	password    string
	httpClient  *http.Client
	logger      *zap.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// NewSessionManager creates a new session manager
func NewSessionManager(baseURL, username, password string, lifetime time.Duration, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		lifetime: lifetime,
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Token returns a valid session token, logging in first when necessary
func (sm *SessionManager) Token(ctx context.Context) (string, error) {
	sm.mu.RLock()
	token := sm.token
	valid := token != "" && time.Until(sm.expiresAt) > time.Minute
	sm.mu.RUnlock()

	if valid {
		return token, nil
	}

	if err := sm.login(ctx); err != nil {
		return "", err
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.token, nil
}

// Invalidate drops the current token so the next call logs in again.
// Called by the client when the terminal rejects a request with 401.
func (sm *SessionManager) Invalidate() {
	sm.mu.Lock()
	sm.token = ""
	sm.mu.Unlock()
	sm.logger.Debug("Session token invalidated")
}

// login authenticates against the terminal and stores the session token
func (sm *SessionManager) login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{
		Username: sm.username,
		Password: sm.password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		sm.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sm.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var lr loginResponse
	if err := json.Unmarshal(respBody, &lr); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	if lr.Token == "" {
		return fmt.Errorf("login succeeded but no session token returned")
	}

	now := time.Now()

	sm.mu.Lock()
	sm.token = lr.Token
	sm.lastLogin = now
	sm.expiresAt = now.Add(sm.lifetime)
	sm.mu.Unlock()

	sm.logger.Info("Logged in to attendance terminal",
		zap.String("user", sm.username),
		zap.Time("expires_at", now.Add(sm.lifetime)))

	return nil
}
