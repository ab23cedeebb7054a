package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/request"
	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}

type SessionManager interface {
	IssueSession(ctx *gin.Context, userID uint) error
	EndSession(ctx *gin.Context)
}

type AuthHandler struct {
	svc      AuthService
	sessions SessionManager
}

func NewAuthHandler(svc AuthService, sessions SessionManager) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
	}
}

func (h *AuthHandler) HandleSignupPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "signup.html", page(ctx, "Sign up", nil, nil))
}

func (h *AuthHandler) HandleLoginPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", page(ctx, "Log in", nil, nil))
}

// HandleSignup godoc
// @Summary      Sign up a new admin
// @Description  Creates the account, opens a session and redirects to the dashboard.
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Param        request   body      request.SignupRequest true "request body"
// @Success      302
// @Failure      500      {object}   response.Err
// @Router       /users [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, "/signup", "Invalid signup form.")
		return
	}

	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, "/signup", err.Error())
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			redirectWithFlash(ctx, "/signup", "An account with this email already exists.")
			return
		}

		err = fmt.Errorf("v1.HandleSignup -> h.svc.Signup -> %w", err)
		renderErrorPage(ctx, response.ErrInternalServerError(err), nil)
		return
	}

	if err = h.sessions.IssueSession(ctx, user.ID); err != nil {
		err = fmt.Errorf("v1.HandleSignup -> h.sessions.IssueSession -> %w", err)
		renderErrorPage(ctx, response.ErrInternalServerError(err), nil)
		return
	}

	ctx.Redirect(http.StatusFound, "/home")
}

// HandleLogin godoc
// @Summary      Log in an admin
// @Description  Sets the session cookie and redirects to the dashboard. Attempts are rate limited per client IP.
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      302
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /session [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, "/login", "Invalid login form.")
		return
	}

	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, "/login", err.Error())
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			redirectWithFlash(ctx, "/login", "Invalid email or password.")
			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		renderErrorPage(ctx, response.ErrInternalServerError(err), nil)
		return
	}

	if err = h.sessions.IssueSession(ctx, user.ID); err != nil {
		err = fmt.Errorf("v1.HandleLogin -> h.sessions.IssueSession -> %w", err)
		renderErrorPage(ctx, response.ErrInternalServerError(err), nil)
		return
	}

	ctx.Redirect(http.StatusFound, "/home")
}

// HandleSignout godoc
// @Summary      Log out
// @Tags         auth
// @Success      302
// @Router       /signout [get]
func (h *AuthHandler) HandleSignout(ctx *gin.Context) {
	h.sessions.EndSession(ctx)
	ctx.Redirect(http.StatusFound, "/login")
}
