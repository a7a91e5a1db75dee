package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yundao/internal/domain"
	"yundao/internal/infra/token"
	"yundao/internal/usecase"

	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

const exposeHeadersHeader = "Access-Control-Expose-Headers"

// Gateway decides, for every request, whether the caller is an
// authenticated principal, and transparently rotates expired access
// tokens whose issue-time marker still matches the refresh cache.
type Gateway struct {
	codec      *token.Codec
	cache      domain.RefreshCache
	engine     *usecase.AuthenticationEngine
	header     string
	refreshTTL time.Duration
	loginPaths []string
	now        func() time.Time
}

func NewGateway(codec *token.Codec, cache domain.RefreshCache, engine *usecase.AuthenticationEngine, header string, refreshTTL time.Duration, loginPaths []string, now func() time.Time) *Gateway {
	if now == nil {
		now = time.Now
	}
	return &Gateway{
		codec:      codec,
		cache:      cache,
		engine:     engine,
		header:     header,
		refreshTTL: refreshTTL,
		loginPaths: loginPaths,
		now:        now,
	}
}

// CheckAccess runs the per-request state machine. Every failure is
// resolved to a domain error before leaving; infrastructure errors deny
// access (fail closed) and are logged by the middleware, never surfaced
// verbatim to the caller.
func (g *Gateway) CheckAccess(c *gin.Context) domain.AuthDecision {
	if g.isLoginPath(c.Request.URL.Path) {
		return domain.Allow(domain.Principal{})
	}
	bearer := strings.TrimSpace(c.GetHeader(g.header))
	if bearer == "" {
		return domain.Deny(domain.ErrMissingToken)
	}

	ctx := c.Request.Context()
	decoded, err := g.codec.Decode(bearer)
	switch {
	case err == nil:
		principal, err := g.engine.ReauthenticateSilently(ctx, decoded.Account)
		if err != nil {
			return domain.Deny(err)
		}
		return domain.Allow(principal)
	case errors.Is(err, domain.ErrTokenExpired):
		return g.rotate(ctx, decoded)
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		log.Printf("gateway: rejected token with invalid signature from %s", c.ClientIP())
		return domain.Deny(err)
	default:
		return domain.Deny(domain.ErrTokenMalformed)
	}
}

// rotate replaces an expired token whose marker is still the authoritative
// one. The read-compare-write on the refresh key is deliberately not
// atomic: two concurrent rotations for the same account both succeed and
// the loser's token goes stale on its next use. At most one extra re-login
// results; signature validity is still required to get here at all.
func (g *Gateway) rotate(ctx context.Context, decoded token.Decoded) domain.AuthDecision {
	key := domain.RefreshKey(decoded.Account)
	ok, err := g.cache.Has(ctx, key)
	if err != nil {
		return domain.Deny(err)
	}
	if !ok {
		// No refresh marker: the session was never established for
		// rotation, or a logout or cache TTL removed it.
		return domain.Deny(domain.ErrSessionExpired)
	}
	stored, err := g.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Deny(domain.ErrSessionExpired)
		}
		return domain.Deny(err)
	}
	if stored != strconv.FormatInt(decoded.MarkerMillis, 10) {
		return domain.Deny(domain.ErrSessionSuperseded)
	}

	newMarker := g.now().UnixMilli()
	if err := g.cache.Set(ctx, key, strconv.FormatInt(newMarker, 10), g.refreshTTL); err != nil {
		return domain.Deny(err)
	}
	newToken, err := g.codec.Issue(decoded.Account, newMarker)
	if err != nil {
		return domain.Deny(err)
	}
	principal, err := g.engine.ReauthenticateSilently(ctx, decoded.Account)
	if err != nil {
		return domain.Deny(err)
	}
	return domain.Rotate(newToken, principal)
}

// Middleware translates the decision to the wire: deny as 401 with a
// stable code, rotate by echoing the new token in the token header, allow
// by memoizing the principal in the request context. The memoized
// principal lives for one request only and is never consulted in place of
// CheckAccess on the next one.
func (g *Gateway) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.CheckAccess(c)
		if !decision.Allowed {
			code, message, known := reasonCode(decision.Reason)
			if !known {
				log.Printf("gateway: denied %s %s: %v", c.Request.Method, c.Request.URL.Path, decision.Reason)
			} else if isAccountStateReason(decision.Reason) {
				log.Printf("gateway: denied %s %s: %s", c.Request.Method, c.Request.URL.Path, message)
			}
			writeError(c, http.StatusUnauthorized, code, message)
			c.Abort()
			return
		}
		if decision.Rotated {
			c.Header(g.header, decision.NewToken)
			c.Header(exposeHeadersHeader, g.header)
		}
		if decision.Principal.Account != "" {
			c.Set(principalContextKey, decision.Principal)
		}
		c.Next()
	}
}

func (g *Gateway) isLoginPath(path string) bool {
	for _, p := range g.loginPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isAccountStateReason(err error) bool {
	return errors.Is(err, domain.ErrLockedAccount) ||
		errors.Is(err, domain.ErrAccountDisabled) ||
		errors.Is(err, domain.ErrUnknownAccount) ||
		errors.Is(err, domain.ErrTokenSignatureInvalid)
}

func getPrincipal(c *gin.Context) (domain.Principal, bool) {
	raw, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := raw.(domain.Principal)
	return principal, ok
}
