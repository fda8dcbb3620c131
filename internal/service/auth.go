// Package service implements the application logic between the HTTP
// handlers and the storage, catalog, and upstream layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sproutme/sprout-server/internal/audit"
	"github.com/sproutme/sprout-server/internal/auth"
	"github.com/sproutme/sprout-server/internal/domain"
	domainerrors "github.com/sproutme/sprout-server/internal/errors"
	"github.com/sproutme/sprout-server/internal/phone"
	"github.com/sproutme/sprout-server/internal/ratelimit"
	"github.com/sproutme/sprout-server/internal/store"
	"github.com/sproutme/sprout-server/internal/upstream"
	"github.com/sproutme/sprout-server/internal/validation"
)

// AuthService handles phone verification and session lifecycle.
// OTP delivery and code checking stay with the upstream; this service
// owns the session and token layer in front of it.
type AuthService struct {
	store      *store.Store
	client     *upstream.Client
	tokens     *auth.TokenService
	otpLimiter *ratelimit.KeyedRateLimiter
	trail      *audit.Trail
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service. The OTP limiter
// is keyed by phone number so one number cannot drain the SMS budget.
func NewAuthService(
	st *store.Store,
	client *upstream.Client,
	tokens *auth.TokenService,
	otpLimiter *ratelimit.KeyedRateLimiter,
	trail *audit.Trail,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:      st,
		client:     client,
		tokens:     tokens,
		otpLimiter: otpLimiter,
		trail:      trail,
		validator:  validator,
		logger:     logger,
	}
}

// ValidatePhoneRequest contains the raw number to validate.
type ValidatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Region      string `json:"region"`
}

// ValidatePhoneResponse returns the canonical form of a valid number.
type ValidatePhoneResponse struct {
	Valid       bool   `json:"valid"`
	PhoneNumber string `json:"phone_number"`
}

// SendCodeRequest asks for an OTP to be delivered to the number.
type SendCodeRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

// VerifyCodeRequest submits the received OTP.
type VerifyCodeRequest struct {
	PhoneNumber      string `json:"phone_number" validate:"required,e164"`
	VerificationCode string `json:"verification_code" validate:"required,numeric,len=6"`
}

// AuthResponse contains the session token and user identity returned
// after a successful verification.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	// IsNew is set when the account has no display name yet; the client
	// routes to the name prompt.
	IsNew bool `json:"is_new"`
}

// ValidatePhone checks and canonicalizes a phone number via the
// upstream before any OTP is sent.
func (s *AuthService) ValidatePhone(ctx context.Context, req ValidatePhoneRequest) (*ValidatePhoneResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := s.client.ValidatePhone(ctx, req.PhoneNumber, req.Region)
	if err != nil {
		return nil, upstreamError("validate phone", err)
	}

	return &ValidatePhoneResponse{
		Valid:       result.Valid,
		PhoneNumber: result.PhoneNumber,
	}, nil
}

// SendCode requests OTP delivery for the number, rate limited per phone
// so a single number cannot drain the SMS budget.
func (s *AuthService) SendCode(ctx context.Context, req SendCodeRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	phoneHash := phone.Hash(req.PhoneNumber)

	if !s.otpLimiter.Allow(req.PhoneNumber) {
		s.recordAuth(ctx, phoneHash, audit.ActionSendCode, audit.OutcomeRejected, "rate limited")
		return domainerrors.RateLimited("too many verification codes requested, try again shortly")
	}

	if err := s.client.SendCode(ctx, req.PhoneNumber); err != nil {
		s.recordAuth(ctx, phoneHash, audit.ActionSendCode, audit.OutcomeFailure, "")
		return upstreamError("send code", err)
	}

	s.recordAuth(ctx, phoneHash, audit.ActionSendCode, audit.OutcomeSuccess, "")
	return nil
}

// VerifyCode checks the OTP with the upstream and, on success, ensures
// the user record exists, caches the profile, and opens a session.
func (s *AuthService) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	phoneHash := phone.Hash(req.PhoneNumber)

	result, err := s.client.VerifyCode(ctx, req.PhoneNumber, req.VerificationCode)
	if err != nil {
		s.recordAuth(ctx, phoneHash, audit.ActionVerifyCode, audit.OutcomeFailure, "")
		return nil, upstreamError("verify code", err)
	}
	if !result.Valid {
		s.recordAuth(ctx, phoneHash, audit.ActionVerifyCode, audit.OutcomeRejected, "wrong code")
		return nil, domainerrors.InvalidCredentials("verification code is incorrect")
	}

	// First verification creates the upstream record; repeat logins are
	// a no-op there.
	if err := s.client.EnsureUser(ctx, req.PhoneNumber); err != nil {
		return nil, upstreamError("ensure user", err)
	}

	check, err := s.client.CheckUser(ctx, req.PhoneNumber)
	if err != nil {
		return nil, upstreamError("check user", err)
	}

	user := &domain.User{
		PhoneNumber: req.PhoneNumber,
		PhoneHash:   phoneHash,
		Name:        check.Name,
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, fmt.Errorf("cache user: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:          uuid.New().String(),
		PhoneNumber: req.PhoneNumber,
		PhoneHash:   phoneHash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.tokens.SessionDuration()),
	}
	if err := s.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.tokens.GenerateSessionToken(session, user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.recordAuth(ctx, phoneHash, audit.ActionLogin, audit.OutcomeSuccess, "")
	s.logger.Info("User logged in", "phone_hash", phoneHash, "session_id", session.ID)

	return &AuthResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		IsNew:     user.Name == "",
	}, nil
}

// Logout revokes the session and drops the cached profile so no
// identity survives on this server past the session.
func (s *AuthService) Logout(ctx context.Context, sessionID, phoneHash string) error {
	if err := s.store.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.store.DeleteUser(phoneHash); err != nil {
		s.logger.Warn("Failed to drop cached profile on logout",
			"phone_hash", phoneHash,
			"error", err,
		)
	}

	s.recordAuth(ctx, phoneHash, audit.ActionLogout, audit.OutcomeSuccess, "")
	return nil
}

// VerifySession validates a session token and confirms the session has
// not been revoked. Used by the authentication middleware.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*auth.SessionClaims, error) {
	claims, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired session token")
	}

	session, err := s.store.GetSession(claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("session has been revoked")
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, domainerrors.TokenExpired("session has expired")
	}

	return claims, nil
}

// recordAuth appends to the audit trail; failures are logged, never
// surfaced to the caller.
func (s *AuthService) recordAuth(ctx context.Context, phoneHash, action, outcome, detail string) {
	if s.trail == nil {
		return
	}
	if err := s.trail.RecordAuthAttempt(ctx, phoneHash, action, outcome, detail); err != nil {
		s.logger.Warn("Failed to record auth attempt", "action", action, "error", err)
	}
}

// upstreamError maps upstream client failures to domain errors.
func upstreamError(op string, err error) error {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		return domainerrors.NotFoundf("%s: not found", op)
	case errors.Is(err, upstream.ErrRateLimited):
		return domainerrors.RateLimited("the backend is throttling requests, try again shortly")
	case errors.Is(err, upstream.ErrBadRequest):
		return domainerrors.Validationf("%s: rejected by the backend", op)
	case errors.Is(err, upstream.ErrUnauthorized):
		return domainerrors.Unauthorizedf("%s: not authorized", op)
	default:
		return domainerrors.Upstreamf("%s failed", op).WithCause(err)
	}
}
