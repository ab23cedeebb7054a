package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
	"github.com/vietanh2810/election-admin/internal/api/middleware"
	"github.com/vietanh2810/election-admin/internal/domain"
	"github.com/vietanh2810/election-admin/internal/service"
)

const flashCookieName = "flash"

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	userID := ctx.GetUint(middleware.ContextKeyUserID)
	if userID == 0 {
		return domain.User{}, response.ErrUnauthorized(errors.New("no user in context"))
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(err)
		}

		err = fmt.Errorf("getUserFromContext -> svc.GetUser -> %w", err)
		return domain.User{}, response.ErrInternalServerError(err)
	}

	return user, nil
}

func parseID(ctx *gin.Context, param string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", param, ctx.Param(param)))
	}

	return uint(id), nil
}

// electionErr converts an election service error into an API error. op names
// the failed call for the logs.
func electionErr(ctx *gin.Context, err error, op string) *response.Err {
	switch {
	case errors.Is(err, domain.ErrValidation):
		e := response.ErrBadRequest(err)
		e.ErrorText = publicMessage(err)
		return e
	case errors.Is(err, domain.ErrElectionNotFound):
		return response.ErrNotFound("election", "id", ctx.Param("electionID"))
	case errors.Is(err, domain.ErrQuestionNotFound):
		return response.ErrNotFound("question", "id", ctx.Param("questionID"))
	case errors.Is(err, domain.ErrOptionNotFound):
		return response.ErrNotFound("option", "id", ctx.Param("optionID"))
	case errors.Is(err, domain.ErrNotOwner):
		return response.ErrPermissionDenied(domain.ErrNotElectionOwner)
	case errors.Is(err, domain.ErrInvalidState):
		e := response.ErrConflict(err)
		e.ErrorText = publicMessage(err)
		return e
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

// publicMessage drops the call trail that layers prepend to an error.
func publicMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, " -> "); i >= 0 {
		msg = msg[i+len(" -> "):]
	}
	return msg
}

// wantsHTML negotiates between a page and JSON. def is used when the client
// states no preference.
func wantsHTML(ctx *gin.Context, def string) bool {
	offered := []string{gin.MIMEJSON, gin.MIMEHTML}
	if def == gin.MIMEHTML {
		offered = []string{gin.MIMEHTML, gin.MIMEJSON}
	}

	return ctx.NegotiateFormat(offered...) == gin.MIMEHTML
}

func setFlash(ctx *gin.Context, message string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(flashCookieName, message, 60, "/", "", false, true)
}

// popFlash returns the pending flash message and clears it.
func popFlash(ctx *gin.Context) string {
	message, err := ctx.Cookie(flashCookieName)
	if err != nil || message == "" {
		return ""
	}

	ctx.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	return message
}

// redirectWithFlash is the outcome of a rejected form submission.
func redirectWithFlash(ctx *gin.Context, location, message string) {
	setFlash(ctx, message)
	ctx.Redirect(http.StatusFound, location)
}

// page builds the data every template expects.
func page(ctx *gin.Context, title string, user *domain.User, data gin.H) gin.H {
	h := gin.H{
		"Title": title,
		"User":  user,
		"Flash": popFlash(ctx),
	}
	for k, v := range data {
		h[k] = v
	}

	return h
}

func renderErrorPage(ctx *gin.Context, e *response.Err, user *domain.User) {
	response.LogErr(ctx, e)
	ctx.HTML(e.HTTPStatusCode, "error.html", page(ctx, e.StatusText, user, gin.H{
		"Status":  e.StatusText,
		"Message": e.ErrorText,
	}))
	ctx.Abort()
}

// renderErr answers a failed page or JSON request in the format the client
// asked for.
func renderErr(ctx *gin.Context, e *response.Err, user *domain.User, def string) {
	if wantsHTML(ctx, def) {
		renderErrorPage(ctx, e, user)
		return
	}

	response.RenderErr(ctx, e)
}
