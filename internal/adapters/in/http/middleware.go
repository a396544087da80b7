package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"orderhub/internal/core/domain/model/identity"
	"orderhub/internal/core/domain/services"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const identityContextKey = "orderhub.identity"

// AuthRecorder receives authentication outcomes, typically for metrics.
type AuthRecorder interface {
	AuthFailed(reason string)
	AuthSucceeded()
}

// CallerIdentity returns the identity attached by Authenticate, or nil.
func CallerIdentity(c echo.Context) *identity.Identity {
	ident, _ := c.Get(identityContextKey).(*identity.Identity)
	return ident
}

// Authenticate verifies the HMAC headers of every request not matched by
// skipper. The body is read once and restored for the handlers. Callers only
// ever see the generic 401 body; the failed check is logged and recorded.
func Authenticate(
	authenticator *services.RequestAuthenticator,
	recorder AuthRecorder,
	logger *slog.Logger,
	skipper middleware.Skipper,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			req := c.Request()
			ctx := req.Context()

			var body []byte
			if req.Body != nil {
				var err error
				body, err = io.ReadAll(req.Body)
				if err != nil {
					var httpErr *echo.HTTPError
					if errors.As(err, &httpErr) {
						return httpErr
					}
					recorder.AuthFailed(string(services.ReasonBodyTampered))
					logger.WarnContext(ctx, "Failed to read request body for authentication", "error", err)
					return unauthorized(c)
				}
				req.Body = io.NopCloser(bytes.NewReader(body))
			}

			caller, err := authenticator.Authenticate(ctx, services.SignedRequest{
				KeyID:     req.Header.Get(services.HeaderKeyID),
				Signature: req.Header.Get(services.HeaderSignature),
				Timestamp: req.Header.Get(services.HeaderTimestamp),
				Digest:    req.Header.Get(services.HeaderDigest),
				Method:    req.Method,
				Path:      req.URL.RequestURI(),
				Body:      body,
				RemoteIP:  c.RealIP(),
			})
			if err != nil {
				var authErr *services.AuthError
				if errors.As(err, &authErr) {
					recorder.AuthFailed(string(authErr.Reason))
					logger.WarnContext(ctx, "Request authentication failed",
						"reason", authErr.Reason,
						"key_id", req.Header.Get(services.HeaderKeyID),
						"remote_ip", c.RealIP(),
						"path", req.URL.Path,
					)
					return unauthorized(c)
				}

				logger.ErrorContext(ctx, "Credential store unavailable", "error", err)
				return c.JSON(http.StatusInternalServerError, Error{
					Code:    http.StatusInternalServerError,
					Message: "Failed to authenticate request",
				})
			}

			recorder.AuthSucceeded()
			c.Set(identityContextKey, caller)
			return next(c)
		}
	}
}

// IdentityRateLimiter keeps one token bucket per authenticated key id.
// Buckets idle for longer than ttl are dropped.
type IdentityRateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIdentityRateLimiter allows perSecond requests per identity with the given
// burst. A non-positive rate disables limiting.
func NewIdentityRateLimiter(perSecond float64, burst int) *IdentityRateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &IdentityRateLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     5 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token from keyID's bucket.
func (l *IdentityRateLimiter) Allow(keyID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.ttl {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.ttl {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[keyID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[keyID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Middleware applies the limiter to authenticated requests. Requests without
// an identity (the exempt health check) pass through.
func (l *IdentityRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerIdentity(c)
			if caller == nil {
				return next(c)
			}
			if !l.Allow(caller.KeyID()) {
				return c.JSON(http.StatusTooManyRequests, Error{
					Code:    http.StatusTooManyRequests,
					Message: "Rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}

// ValidateRequests checks requests against the OpenAPI document. Paths the
// document does not describe are left to the echo router.
func ValidateRequests(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
					return next(c)
				}
				return badRequest(c, err.Error())
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				var reqErr *openapi3filter.RequestError
				if errors.As(err, &reqErr) {
					return badRequest(c, reqErr.Error())
				}
				return badRequest(c, err.Error())
			}
			return next(c)
		}
	}, nil
}

// RequestLogger writes one slog line per request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if caller := CallerIdentity(c); caller != nil {
				attrs = append(attrs, "key_id", caller.KeyID())
			}
			if v.Error != nil {
				logger.ErrorContext(c.Request().Context(), "Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "Request handled", attrs...)
			return nil
		},
	})
}
