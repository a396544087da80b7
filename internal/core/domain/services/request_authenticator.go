package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/pkg/errs"
)

// Header names carrying the request credentials.
const (
	HeaderKeyID     = "X-Key-Id"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderDigest    = "Digest"
)

// DigestPrefix tags the body digest algorithm.
const DigestPrefix = "SHA-256="

// DefaultMaxClockSkew bounds how far X-Timestamp may drift from the server
// clock in either direction.
const DefaultMaxClockSkew = 300 * time.Second

// AuthFailureReason identifies which check rejected a request. It is logged
// and used as a metrics label, never returned to the caller.
type AuthFailureReason string

const (
	ReasonMissingCredentials     AuthFailureReason = "missing_credentials"
	ReasonUnknownKey             AuthFailureReason = "unknown_key"
	ReasonIPNotAllowed           AuthFailureReason = "ip_not_allowed"
	ReasonStaleOrFutureTimestamp AuthFailureReason = "stale_or_future_timestamp"
	ReasonBodyTampered           AuthFailureReason = "body_tampered"
	ReasonInvalidSignature       AuthFailureReason = "invalid_signature"
)

var (
	ErrMissingCredentials     = errors.New("missing credentials")
	ErrUnknownKey             = errors.New("unknown key")
	ErrIPNotAllowed           = errors.New("ip not allowed")
	ErrStaleOrFutureTimestamp = errors.New("stale or future timestamp")
	ErrBodyTampered           = errors.New("body tampered")
	ErrInvalidSignature       = errors.New("invalid signature")
)

var reasonSentinels = map[AuthFailureReason]error{
	ReasonMissingCredentials:     ErrMissingCredentials,
	ReasonUnknownKey:             ErrUnknownKey,
	ReasonIPNotAllowed:           ErrIPNotAllowed,
	ReasonStaleOrFutureTimestamp: ErrStaleOrFutureTimestamp,
	ReasonBodyTampered:           ErrBodyTampered,
	ReasonInvalidSignature:       ErrInvalidSignature,
}

// AuthError is a rejected authentication attempt.
type AuthError struct {
	Reason AuthFailureReason
}

func newAuthError(reason AuthFailureReason) *AuthError {
	return &AuthError{Reason: reason}
}

func (e *AuthError) Error() string {
	return "authentication failed: " + string(e.Reason)
}

func (e *AuthError) Unwrap() error {
	return reasonSentinels[e.Reason]
}

// SignedRequest is the transport-independent view of an inbound request.
// Path includes the query string when present.
type SignedRequest struct {
	KeyID     string
	Signature string
	Timestamp string
	Digest    string
	Method    string
	Path      string
	Body      []byte
	RemoteIP  string
}

// CredentialLookup is the read side of the credential store.
type CredentialLookup interface {
	FindActiveByKeyID(ctx context.Context, keyID string) (*identity.Identity, error)
}

// RequestAuthenticator verifies HMAC-signed requests. It holds no per-request
// state and is safe for concurrent use.
type RequestAuthenticator struct {
	credentials  CredentialLookup
	maxClockSkew time.Duration
	now          func() time.Time
}

type AuthenticatorOption func(*RequestAuthenticator)

// WithMaxClockSkew overrides DefaultMaxClockSkew. Non-positive values are ignored.
func WithMaxClockSkew(d time.Duration) AuthenticatorOption {
	return func(a *RequestAuthenticator) {
		if d > 0 {
			a.maxClockSkew = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) AuthenticatorOption {
	return func(a *RequestAuthenticator) {
		if now != nil {
			a.now = now
		}
	}
}

func NewRequestAuthenticator(credentials CredentialLookup, opts ...AuthenticatorOption) *RequestAuthenticator {
	a := &RequestAuthenticator{
		credentials:  credentials,
		maxClockSkew: DefaultMaxClockSkew,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate resolves the identity that signed req.
//
// Checks run in a fixed order: presence of all four credentials, active key
// lookup, IP allowlist, timestamp freshness, body digest, then signature.
// Rejections are *AuthError; a failing credential store yields an
// errs.InfrastructureError instead so outages are not reported as bad keys.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, req SignedRequest) (*identity.Identity, error) {
	if req.KeyID == "" || req.Signature == "" || req.Timestamp == "" || req.Digest == "" {
		return nil, newAuthError(ReasonMissingCredentials)
	}

	caller, err := a.credentials.FindActiveByKeyID(ctx, req.KeyID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, newAuthError(ReasonUnknownKey)
	}
	if err != nil {
		return nil, errs.NewInfrastructureError("find identity", err)
	}
	if caller == nil || !caller.IsActive() {
		return nil, newAuthError(ReasonUnknownKey)
	}

	if !caller.AllowsIP(req.RemoteIP) {
		return nil, newAuthError(ReasonIPNotAllowed)
	}

	if !a.isFresh(req.Timestamp) {
		return nil, newAuthError(ReasonStaleOrFutureTimestamp)
	}

	if subtle.ConstantTimeCompare([]byte(BodyDigest(req.Body)), []byte(req.Digest)) != 1 {
		return nil, newAuthError(ReasonBodyTampered)
	}

	if !caller.VerifySignature(StringToSign(req.Method, req.Path, req.Timestamp, req.Digest), req.Signature) {
		return nil, newAuthError(ReasonInvalidSignature)
	}

	return caller, nil
}

// An unparseable timestamp is treated as stale.
func (a *RequestAuthenticator) isFresh(timestamp string) bool {
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return false
	}
	diff := a.now().Unix() - ts
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(a.maxClockSkew/time.Second)
}

// BodyDigest returns "SHA-256=" + base64(sha256(body)).
func BodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return DigestPrefix + base64.StdEncoding.EncodeToString(sum[:])
}

// StringToSign joins method, path, timestamp and digest with newlines.
func StringToSign(method, path, timestamp, digest string) string {
	return strings.Join([]string{strings.ToUpper(method), path, timestamp, digest}, "\n")
}

// SignRequest fills in the credential fields of a request the way a client
// does. at is converted to whole seconds since the epoch.
func SignRequest(keyID, secret, method, path string, body []byte, at time.Time) SignedRequest {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	digest := BodyDigest(body)
	return SignedRequest{
		KeyID:     keyID,
		Signature: identity.Sign(secret, StringToSign(method, path, timestamp, digest)),
		Timestamp: timestamp,
		Digest:    digest,
		Method:    method,
		Path:      path,
		Body:      body,
	}
}
