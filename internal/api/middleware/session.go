package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
	"github.com/vietanh2810/election-admin/internal/pkg/jwthelper"
)

const (
	SessionCookieName = "session"
	// ContextKeyUserID holds the authenticated user id for downstream handlers.
	ContextKeyUserID = "userID"

	loginPath = "/login"
)

var ErrSessionRevoked = errors.New("session has been revoked")

// Authenticator issues, verifies and revokes cookie sessions.
type Authenticator struct {
	key    []byte
	ttl    time.Duration
	secure bool

	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewAuthenticator(jwtKey string, ttl time.Duration, secure bool) *Authenticator {
	return &Authenticator{
		key:     []byte(jwtKey),
		ttl:     ttl,
		secure:  secure,
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// IssueSession signs a token for userID and stores it in the session cookie.
func (a *Authenticator) IssueSession(ctx *gin.Context, userID uint) error {
	token, _, err := jwthelper.GenerateToken(a.key, userID, ctx.Request.UserAgent(), a.ttl)
	if err != nil {
		return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	a.setCookie(ctx, token, int(a.ttl.Seconds()))
	return nil
}

// EndSession revokes the current token, if any, and clears the cookie.
func (a *Authenticator) EndSession(ctx *gin.Context) {
	if token, err := ctx.Cookie(SessionCookieName); err == nil && token != "" {
		if claims, err := jwthelper.ParseToken(a.key, token); err == nil {
			a.revoke(claims.ID, claims.ExpiresAt.Time)
		}
	}

	a.setCookie(ctx, "", -1)
}

// RequireSession rejects requests without a valid session. Browsers are
// redirected to the login page, JSON clients get a 401.
func (a *Authenticator) RequireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := a.verify(ctx)
		if err != nil {
			zap.L().Debug("session rejected", zap.Error(err), zap.String("path", ctx.Request.URL.Path))

			if wantsJSON(ctx) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}
			ctx.Redirect(http.StatusFound, loginPath)
			ctx.Abort()
			return
		}

		ctx.Set(ContextKeyUserID, userID)
		ctx.Next()
	}
}

func (a *Authenticator) verify(ctx *gin.Context) (uint, error) {
	token, err := ctx.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return 0, fmt.Errorf("missing session cookie -> %w", jwthelper.ErrInvalidToken)
	}

	claims, err := jwthelper.ParseToken(a.key, token)
	if err != nil {
		return 0, err
	}

	if claims.UserAgent != ctx.Request.UserAgent() {
		return 0, fmt.Errorf("user agent mismatch -> %w", jwthelper.ErrInvalidToken)
	}

	if a.isRevoked(claims.ID) {
		return 0, ErrSessionRevoked
	}

	return claims.UserID, nil
}

func (a *Authenticator) revoke(id string, expiresAt time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	for jti, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, jti)
		}
	}
	a.revoked[id] = expiresAt
}

func (a *Authenticator) isRevoked(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.revoked[id]
	return ok
}

func (a *Authenticator) setCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(SessionCookieName, value, maxAge, "/", "", a.secure, true)
}

// wantsJSON reports whether the client asked for JSON rather than a page.
func wantsJSON(ctx *gin.Context) bool {
	accept := ctx.GetHeader("Accept")
	return strings.Contains(accept, gin.MIMEJSON) && !strings.Contains(accept, gin.MIMEHTML)
}
