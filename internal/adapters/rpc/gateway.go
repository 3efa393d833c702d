// Package rpc binds the backend gateway to the local backend process over JSON RPC on HTTP.
//
// Every call is POST {BaseURL}/rpc/{method} with a JSON params body. The backend answers
// with an envelope {"result": ..., "error": {"code": ..., "message": ...}}; error envelopes
// become *apperrors.AppError values carrying the backend's code and message verbatim.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	"golang.org/x/net/publicsuffix"
)

// RPC method names exposed by the backend.
const (
	MethodWhoAmI         = "auth.me"
	MethodRefresh        = "auth.refresh"
	MethodLogin          = "auth.login"
	MethodLogout         = "auth.logout"
	MethodSecurityStatus = "system.security_status"
)

const maxResponseBytes = 1 << 20

// Gateway implements ports.BackendGateway and ports.SecurityStatusChecker.
type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Options configures a Gateway.
type Options struct {
	BaseURL    string
	Timeout    time.Duration // default 10s
	HTTPClient *http.Client  // Optional; a client with a cookie jar is built when nil
	Logger     *slog.Logger
}

// NewGateway creates an RPC gateway for the backend at opts.BaseURL.
func NewGateway(opts Options) (*Gateway, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend URL is required")
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		client = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{baseURL: base, client: client, logger: logger.With("component", "rpc_gateway")}, nil
}

type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type tokenParams struct {
	RefreshToken string `json:"refresh_token"`
}

type loginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type securityStatus struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// WhoAmI calls auth.me with the access token as a bearer credential.
func (g *Gateway) WhoAmI(ctx context.Context, accessToken string) (domainauth.User, error) {
	var u domainauth.User
	if err := g.call(ctx, MethodWhoAmI, accessToken, struct{}{}, &u); err != nil {
		return domainauth.User{}, err
	}
	return u, nil
}

// Refresh calls auth.refresh.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error) {
	var s domainauth.Session
	if err := g.call(ctx, MethodRefresh, "", tokenParams{RefreshToken: refreshToken}, &s); err != nil {
		return domainauth.Session{}, err
	}
	return s, nil
}

// Login calls auth.login.
func (g *Gateway) Login(ctx context.Context, username, password string) (domainauth.Session, error) {
	var s domainauth.Session
	if err := g.call(ctx, MethodLogin, "", loginParams{Username: username, Password: password}, &s); err != nil {
		return domainauth.Session{}, err
	}
	return s, nil
}

// Logout calls auth.logout.
func (g *Gateway) Logout(ctx context.Context, refreshToken string) error {
	return g.call(ctx, MethodLogout, "", tokenParams{RefreshToken: refreshToken}, nil)
}

// SecurityStatus calls system.security_status and fails unless the backend reports ready.
func (g *Gateway) SecurityStatus(ctx context.Context) error {
	var st securityStatus
	if err := g.call(ctx, MethodSecurityStatus, "", struct{}{}, &st); err != nil {
		return err
	}
	if !st.Ready {
		msg := strings.TrimSpace(st.Message)
		if msg == "" {
			msg = "Runtime security configuration is not ready."
		}
		return apperrors.New(apperrors.ErrCodeUnavailable, msg)
	}
	return nil
}

// Check satisfies ports.HealthProbe.
func (g *Gateway) Check(ctx context.Context) error { return g.SecurityStatus(ctx) }

func (g *Gateway) call(ctx context.Context, method, bearer string, params, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s params: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "backend is not reachable")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			g.logger.DebugContext(ctx, "close rpc response body", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	g.logger.DebugContext(ctx, "rpc call",
		"method", method,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return decodeResponse(method, resp.StatusCode, raw, out)
}

func decodeResponse(method string, status int, raw []byte, out any) error {
	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && status < http.StatusBadRequest {
			return fmt.Errorf("decode %s response: %w", method, err)
		}
	}

	if env.Error != nil {
		return apperrors.New(apperrors.ErrorCode(env.Error.Code), env.Error.Message)
	}

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized("unauthorized")
	case status >= http.StatusBadRequest:
		return apperrors.New(apperrors.ErrCodeUnavailable,
			fmt.Sprintf("backend %s failed with status %d", method, status))
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
