package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/xavierca1/proposal-control/internal/entity"
)

// Margem antes do vencimento para renovar o token.
const refreshMargin = time.Minute

// AuthClient fala com o GoTrue do Supabase e mantém a sessão do operador.
// Implementa entity.IdentityService.
type AuthClient struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	session   *entity.Session
	listeners map[int]entity.AuthListener
	nextID    int
	timer     *time.Timer
}

func NewAuthClient(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *AuthClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthClient{
		baseURL:   baseURL,
		anonKey:   anonKey,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]entity.AuthListener),
	}
}

// SignInWithPassword troca e-mail e senha por uma sessão.
func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error) {
	session, err := c.grant(ctx, "password", passwordGrantRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	c.store(session)
	c.emit(entity.AuthEventSignedIn, session)
	return session, nil
}

// GetSession devolve a sessão atual. Uma sessão vencida é renovada se houver
// refresh token; caso contrário é descartada.
func (c *AuthClient) GetSession(ctx context.Context) (*entity.Session, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()

	if current == nil {
		return nil, nil
	}
	if !current.Expired(c.now()) {
		return current, nil
	}
	if current.RefreshToken == "" {
		c.drop()
		return nil, nil
	}
	return c.refresh(ctx, current.RefreshToken)
}

// OnAuthStateChange registra um ouvinte; a função devolvida o remove.
func (c *AuthClient) OnAuthStateChange(listener entity.AuthListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// SignOut encerra a sessão local sempre; a revogação remota é best-effort.
func (c *AuthClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()

	if current == nil {
		return nil
	}
	c.drop()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, current.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request supabase logout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	return nil
}

func (c *AuthClient) refresh(ctx context.Context, refreshToken string) (*entity.Session, error) {
	session, err := c.grant(ctx, "refresh_token", refreshGrantRequest{RefreshToken: refreshToken})
	if err != nil {
		c.logger.Warn("falha ao renovar sessão", "error", err)
		c.drop()
		return nil, err
	}

	c.store(session)
	c.emit(entity.AuthEventTokenRefreshed, session)
	return session, nil
}

func (c *AuthClient) grant(ctx context.Context, grantType string, payload any) (*entity.Session, error) {
	url := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", c.baseURL, grantType)

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request supabase auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.decodeError(resp)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("erro decode supabase auth: %w", err)
	}
	return c.toSession(tok), nil
}

func (c *AuthClient) toSession(tok tokenResponse) *entity.Session {
	s := &entity.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User:         entity.User{ID: tok.User.ID, Email: tok.User.Email},
	}
	switch {
	case tok.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tok.ExpiresAt, 0).UTC()
	case tok.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second).UTC()
	}
	return s
}

// store grava a sessão e agenda a renovação automática.
func (c *AuthClient) store(session *entity.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = session
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if session.ExpiresAt.IsZero() || session.RefreshToken == "" {
		return
	}

	wait := session.ExpiresAt.Sub(c.now()) - refreshMargin
	if wait < 0 {
		wait = 0
	}
	refreshToken := session.RefreshToken
	c.timer = time.AfterFunc(wait, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout+time.Second)
		defer cancel()
		c.refresh(ctx, refreshToken)
	})
}

// drop remove a sessão local e avisa os ouvintes.
func (c *AuthClient) drop() {
	c.mu.Lock()
	had := c.session != nil
	c.session = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if had {
		c.emit(entity.AuthEventSignedOut, nil)
	}
}

// emit chama os ouvintes fora do lock.
func (c *AuthClient) emit(event entity.AuthEvent, session *entity.Session) {
	c.mu.Lock()
	listeners := make([]entity.AuthListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(event, session)
	}
}

func (c *AuthClient) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

func (c *AuthClient) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload authErrorResponse
	msg := string(body)
	if json.Unmarshal(body, &payload) == nil && payload.message() != "" {
		msg = payload.message()
	}
	c.logger.Warn("supabase auth recusou", "status", resp.StatusCode, "message", msg)
	return &AuthError{Status: resp.StatusCode, Message: msg}
}
