package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/request"
	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
	"github.com/vietanh2810/election-admin/internal/domain"
)

type ElectionService interface {
	CreateElection(ctx context.Context, user domain.User, name string) (domain.Election, error)
	ListElections(ctx context.Context, user domain.User) ([]domain.Election, error)
	GetElection(ctx context.Context, user domain.User, id uint) (domain.Election, error)
	RenameElection(ctx context.Context, user domain.User, id uint, name string) (domain.Election, error)
	DeleteElection(ctx context.Context, user domain.User, id uint) error
	LaunchElection(ctx context.Context, user domain.User, id uint) (domain.Election, error)
	EndElection(ctx context.Context, user domain.User, id uint) (domain.Election, error)
	BallotReadiness(election domain.Election) []string

	ListQuestions(ctx context.Context, user domain.User, electionID uint) ([]domain.Question, error)
	GetQuestion(ctx context.Context, user domain.User, electionID, questionID uint) (domain.Question, error)
	AddQuestion(ctx context.Context, user domain.User, electionID uint, title, description string) (domain.Question, error)
	EditQuestion(ctx context.Context, user domain.User, electionID, questionID uint, title, description string) (domain.Question, error)
	DeleteQuestion(ctx context.Context, user domain.User, electionID, questionID uint) error

	ListOptions(ctx context.Context, user domain.User, electionID, questionID uint) ([]domain.Option, error)
	GetOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint) (domain.Option, error)
	AddOption(ctx context.Context, user domain.User, electionID, questionID uint, value string) (domain.Option, error)
	EditOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint, value string) (domain.Option, error)
	DeleteOption(ctx context.Context, user domain.User, electionID, questionID, optionID uint) error
}

type ElectionHandler struct {
	svc  ElectionService
	uSvc UserService
}

func NewElectionHandler(svc ElectionService, uSvc UserService) *ElectionHandler {
	return &ElectionHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func electionPath(id uint) string {
	return fmt.Sprintf("/election/%d", id)
}

// formFailed answers a rejected form submission. Problems the admin can fix
// go back to the form as a flash message, missing or foreign elections get an
// error page.
func formFailed(ctx *gin.Context, err error, op, back string, user domain.User) {
	e := electionErr(ctx, err, op)
	if e.HTTPStatusCode == http.StatusBadRequest || e.HTTPStatusCode == http.StatusConflict {
		redirectWithFlash(ctx, back, e.ErrorText)
		return
	}

	renderErrorPage(ctx, e, &user)
}

func (h *ElectionHandler) HandleHome(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	elections, err := h.svc.ListElections(ctx.Request.Context(), user)
	if err != nil {
		err = fmt.Errorf("HandleHome -> h.svc.ListElections -> %w", err)
		renderErrorPage(ctx, response.ErrInternalServerError(err), &user)
		return
	}

	ctx.HTML(http.StatusOK, "home.html", page(ctx, "Home", &user, gin.H{
		"Elections": elections,
	}))
}

func (h *ElectionHandler) HandleNewElectionPage(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	ctx.HTML(http.StatusOK, "election_new.html", page(ctx, "New election", &user, nil))
}

// HandleListElections godoc
// @Summary      List the caller's elections
// @Description  Returns JSON unless the client prefers text/html.
// @Tags         elections
// @Produce      json,html
// @Success      200  {object}  response.ElectionsResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /election [get]
// @Security     SessionCookie
func (h *ElectionHandler) HandleListElections(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErr(ctx, respErr, nil, gin.MIMEJSON)
		return
	}

	elections, err := h.svc.ListElections(ctx.Request.Context(), user)
	if err != nil {
		err = fmt.Errorf("HandleListElections -> h.svc.ListElections -> %w", err)
		renderErr(ctx, response.ErrInternalServerError(err), &user, gin.MIMEJSON)
		return
	}

	if wantsHTML(ctx, gin.MIMEJSON) {
		ctx.HTML(http.StatusOK, "elections.html", page(ctx, "Elections", &user, gin.H{
			"Elections": elections,
		}))
		return
	}

	ctx.JSON(http.StatusOK, response.ElectionsResponse{Elections: elections})
}

// HandleCreateElection godoc
// @Summary      Create a draft election
// @Tags         elections
// @Accept       x-www-form-urlencoded,json
// @Param        request  body  request.ElectionRequest  true  "election name"
// @Success      302
// @Router       /election [post]
// @Security     SessionCookie
func (h *ElectionHandler) HandleCreateElection(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	var req request.ElectionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, "/elections/new", "Invalid election form.")
		return
	}
	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, "/elections/new", err.Error())
		return
	}

	election, err := h.svc.CreateElection(ctx.Request.Context(), user, req.Name)
	if err != nil {
		formFailed(ctx, err, "HandleCreateElection -> h.svc.CreateElection", "/elections/new", user)
		return
	}

	ctx.Redirect(http.StatusFound, electionPath(election.ID))
}

// HandleGetElection godoc
// @Summary      Get an election with its ballot
// @Description  Renders the election page unless the client asks for JSON.
// @Tags         elections
// @Produce      html,json
// @Param        electionID  path  int  true  "Election ID"
// @Success      200  {object}  domain.Election
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /election/{electionID} [get]
// @Security     SessionCookie
func (h *ElectionHandler) HandleGetElection(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErr(ctx, respErr, nil, gin.MIMEHTML)
		return
	}

	electionID, respErr := parseID(ctx, "electionID")
	if respErr != nil {
		renderErr(ctx, respErr, &user, gin.MIMEHTML)
		return
	}

	election, err := h.svc.GetElection(ctx.Request.Context(), user, electionID)
	if err != nil {
		renderErr(ctx, electionErr(ctx, err, "HandleGetElection -> h.svc.GetElection"), &user, gin.MIMEHTML)
		return
	}

	if !wantsHTML(ctx, gin.MIMEHTML) {
		ctx.JSON(http.StatusOK, election)
		return
	}

	ctx.HTML(http.StatusOK, "election.html", page(ctx, election.Name, &user, gin.H{
		"Election": election,
		"Issues":   h.svc.BallotReadiness(election),
	}))
}

// HandleRenameElection godoc
// @Summary      Rename an election
// @Description  Allowed in every status.
// @Tags         elections
// @Accept       x-www-form-urlencoded,json
// @Param        electionID  path  int                      true  "Election ID"
// @Param        request     body  request.ElectionRequest  true  "new name"
// @Success      302
// @Router       /election/{electionID} [post]
// @Security     SessionCookie
func (h *ElectionHandler) HandleRenameElection(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	electionID, respErr := parseID(ctx, "electionID")
	if respErr != nil {
		renderErrorPage(ctx, respErr, &user)
		return
	}
	back := electionPath(electionID)

	var req request.ElectionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, back, "Invalid election form.")
		return
	}
	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, back, err.Error())
		return
	}

	if _, err := h.svc.RenameElection(ctx.Request.Context(), user, electionID, req.Name); err != nil {
		formFailed(ctx, err, "HandleRenameElection -> h.svc.RenameElection", back, user)
		return
	}

	ctx.Redirect(http.StatusFound, back)
}

// HandleDeleteElection godoc
// @Summary      Delete an election
// @Description  Deletes the election with all its questions and options, in any status.
// @Tags         elections
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Success      200  {object}  response.SuccessResponse
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /election/{electionID} [delete]
// @Security     SessionCookie
func (h *ElectionHandler) HandleDeleteElection(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	electionID, respErr := parseID(ctx, "electionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteElection(ctx.Request.Context(), user, electionID); err != nil {
		response.RenderErr(ctx, electionErr(ctx, err, "HandleDeleteElection -> h.svc.DeleteElection"))
		return
	}

	ctx.JSON(http.StatusOK, response.SuccessResponse{Success: true})
}

// HandleLaunchElection godoc
// @Summary      Launch a draft election
// @Description  PUT answers with the election as JSON. GET redirects back to the election page.
// @Tags         elections
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Success      200  {object}  domain.Election
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /election/{electionID}/launch [put]
// @Security     SessionCookie
func (h *ElectionHandler) HandleLaunchElection(ctx *gin.Context) {
	h.transition(ctx, "HandleLaunchElection -> h.svc.LaunchElection", h.svc.LaunchElection)
}

// HandleEndElection godoc
// @Summary      End a launched election
// @Tags         elections
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Success      200  {object}  domain.Election
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /election/{electionID}/end [put]
// @Security     SessionCookie
func (h *ElectionHandler) HandleEndElection(ctx *gin.Context) {
	h.transition(ctx, "HandleEndElection -> h.svc.EndElection", h.svc.EndElection)
}

type transitionFunc func(ctx context.Context, user domain.User, id uint) (domain.Election, error)

func (h *ElectionHandler) transition(ctx *gin.Context, op string, fn transitionFunc) {
	asPage := ctx.Request.Method == http.MethodGet

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		if asPage {
			renderErrorPage(ctx, respErr, nil)
			return
		}
		response.RenderErr(ctx, respErr)
		return
	}

	electionID, respErr := parseID(ctx, "electionID")
	if respErr != nil {
		if asPage {
			renderErrorPage(ctx, respErr, &user)
			return
		}
		response.RenderErr(ctx, respErr)
		return
	}

	election, err := fn(ctx.Request.Context(), user, electionID)
	if err != nil {
		if asPage {
			formFailed(ctx, err, op, electionPath(electionID), user)
			return
		}
		response.RenderErr(ctx, electionErr(ctx, err, op))
		return
	}

	if asPage {
		ctx.Redirect(http.StatusFound, electionPath(election.ID))
		return
	}

	ctx.JSON(http.StatusOK, election)
}
