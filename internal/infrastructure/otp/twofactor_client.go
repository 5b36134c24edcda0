package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"davspay.backend/internal/config"
	"davspay.backend/internal/domain/entities"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/domain/repositories"
	"davspay.backend/pkg/logger"
	"davspay.backend/pkg/metrics"
)

var _ repositories.OTPGateway = (*TwoFactorClient)(nil)

const (
	statusSuccess = "Success"
	maxBodyBytes  = 64 * 1024

	opSend   = "send"
	opVerify = "verify"

	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"

	msgNotConfigured = "OTP provider is not configured"
	msgUnavailable   = "OTP service unavailable"
	msgBadResponse   = "Invalid response from OTP service"
)

// twoFactorResponse is the body shape shared by every 2Factor SMS endpoint
type twoFactorResponse struct {
	Status  string `json:"Status"`
	Details string `json:"Details"`
}

// TwoFactorClient talks to the 2Factor.in SMS OTP API
type TwoFactorClient struct {
	apiKey     string
	baseURL    string
	template   string
	httpClient *http.Client
}

// NewTwoFactorClient builds a client from config. An empty API key makes every call fail
// with a GatewayError instead of reaching the network.
func NewTwoFactorClient(cfg config.OTPConfig) *TwoFactorClient {
	return NewTwoFactorClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewTwoFactorClientWithHTTP is NewTwoFactorClient with a caller-supplied http.Client
func NewTwoFactorClientWithHTTP(cfg config.OTPConfig, httpClient *http.Client) *TwoFactorClient {
	return &TwoFactorClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		template:   cfg.Template,
		httpClient: httpClient,
	}
}

// SendOTP asks the provider to generate and deliver a code to phone
func (c *TwoFactorClient) SendOTP(ctx context.Context, phone string) (*entities.OTPSession, error) {
	if c.apiKey == "" {
		metrics.ObserveOTP(opSend, outcomeError)
		return nil, newGatewayError(msgNotConfigured, nil)
	}

	endpoint, err := c.endpoint("SMS", phone, "AUTOGEN3", c.template)
	if err != nil {
		metrics.ObserveOTP(opSend, outcomeError)
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput, "Invalid OTP request", err)
	}

	body, _, err := c.get(ctx, endpoint)
	if err != nil {
		metrics.ObserveOTP(opSend, outcomeError)
		logger.Warn(ctx, "OTP send failed", zap.Error(err))
		return nil, err
	}

	if body.Status != statusSuccess {
		metrics.ObserveOTP(opSend, outcomeError)
		logger.Warn(ctx, "OTP provider refused send", zap.String("status", body.Status), zap.String("details", body.Details))
		return nil, newGatewayError(detailsOr(body.Details, "Failed to send OTP"), nil)
	}
	if body.Details == "" {
		metrics.ObserveOTP(opSend, outcomeError)
		return nil, newGatewayError(msgBadResponse, errors.New("missing session id"))
	}

	metrics.ObserveOTP(opSend, outcomeSuccess)
	return &entities.OTPSession{SessionID: body.Details}, nil
}

// VerifyOTP checks code against the session returned by SendOTP
func (c *TwoFactorClient) VerifyOTP(ctx context.Context, sessionID, code string) (*entities.OTPVerification, error) {
	if c.apiKey == "" {
		metrics.ObserveOTP(opVerify, outcomeError)
		return nil, newGatewayError(msgNotConfigured, nil)
	}

	endpoint, err := c.endpoint("SMS", "VERIFY", sessionID, code)
	if err != nil {
		metrics.ObserveOTP(opVerify, outcomeError)
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput, "Invalid OTP request", err)
	}

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		metrics.ObserveOTP(opVerify, outcomeError)
		logger.Warn(ctx, "OTP verify failed", zap.Error(err))
		return nil, err
	}

	if body.Status == statusSuccess {
		metrics.ObserveOTP(opVerify, outcomeSuccess)
		return &entities.OTPVerification{Verdict: entities.OTPVerified, Details: body.Details}, nil
	}
	if status >= http.StatusInternalServerError {
		metrics.ObserveOTP(opVerify, outcomeError)
		return nil, newGatewayError(detailsOr(body.Details, msgUnavailable), fmt.Errorf("provider status %d", status))
	}

	metrics.ObserveOTP(opVerify, outcomeRejected)
	return &entities.OTPVerification{Verdict: entities.OTPRejected, Details: detailsOr(body.Details, "Invalid OTP")}, nil
}

// endpoint appends the API key and segments to the base URL. Each segment is path-escaped
// and the result is never cleaned, so caller values cannot change which provider route is hit.
func (c *TwoFactorClient) endpoint(segments ...string) (string, error) {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, seg := range append([]string{c.apiKey}, segments...) {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: invalid path segment %q", domainerrors.ErrInvalidInput, seg)
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String(), nil
}

// get performs the request and decodes the provider envelope.
// Transport errors and undecodable bodies come back as *GatewayError.
func (c *TwoFactorClient) get(ctx context.Context, endpoint string) (*twoFactorResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, newGatewayError(msgUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, newGatewayError(msgUnavailable, ctx.Err())
		}
		return nil, 0, newGatewayError(msgUnavailable, redactURLError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, newGatewayError(msgUnavailable, err)
	}

	var body twoFactorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Status == "" {
		if err == nil {
			err = errors.New("missing Status field")
		}
		return nil, resp.StatusCode, newGatewayError(msgBadResponse, fmt.Errorf("provider status %d: %w", resp.StatusCode, err))
	}
	return &body, resp.StatusCode, nil
}

// redactURLError drops the request URL, which embeds the API key, from transport errors
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func detailsOr(details, fallback string) string {
	if strings.TrimSpace(details) == "" {
		return fallback
	}
	return details
}
