package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/request"
	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
)

// HandleListOptions godoc
// @Summary      List the options of a question
// @Tags         options
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Param        questionID  path  int  true  "Question ID"
// @Success      200  {array}   domain.Option
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /election/{electionID}/question/{questionID}/options [get]
// @Security     SessionCookie
func (h *ElectionHandler) HandleListOptions(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ids, respErr := parseIDs(ctx, "electionID", "questionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	options, err := h.svc.ListOptions(ctx.Request.Context(), user, ids[0], ids[1])
	if err != nil {
		response.RenderErr(ctx, electionErr(ctx, err, "HandleListOptions -> h.svc.ListOptions"))
		return
	}

	ctx.JSON(http.StatusOK, options)
}

// HandleAddOption godoc
// @Summary      Append an option to a question
// @Description  Duplicate values are accepted.
// @Tags         options
// @Accept       x-www-form-urlencoded,json
// @Param        electionID  path  int                       true  "Election ID"
// @Param        questionID  path  int                       true  "Question ID"
// @Param        request     body  request.AddOptionRequest  true  "option"
// @Success      302
// @Router       /election/{electionID}/question/{questionID}/options/add [post]
// @Security     SessionCookie
func (h *ElectionHandler) HandleAddOption(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	ids, respErr := parseIDs(ctx, "electionID", "questionID")
	if respErr != nil {
		renderErrorPage(ctx, respErr, &user)
		return
	}
	back := questionPath(ids[0], ids[1])

	var req request.AddOptionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, back, "Invalid option form.")
		return
	}
	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, back, err.Error())
		return
	}

	if _, err := h.svc.AddOption(ctx.Request.Context(), user, ids[0], ids[1], req.Option); err != nil {
		formFailed(ctx, err, "HandleAddOption -> h.svc.AddOption", back, user)
		return
	}

	ctx.Redirect(http.StatusFound, back)
}

func (h *ElectionHandler) HandleEditOptionPage(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	ids, respErr := parseIDs(ctx, "electionID", "questionID", "optionID")
	if respErr != nil {
		renderErrorPage(ctx, respErr, &user)
		return
	}

	election, err := h.svc.GetElection(ctx.Request.Context(), user, ids[0])
	if err != nil {
		renderErrorPage(ctx, electionErr(ctx, err, "HandleEditOptionPage -> h.svc.GetElection"), &user)
		return
	}

	question, err := h.svc.GetQuestion(ctx.Request.Context(), user, ids[0], ids[1])
	if err != nil {
		renderErrorPage(ctx, electionErr(ctx, err, "HandleEditOptionPage -> h.svc.GetQuestion"), &user)
		return
	}

	option, err := h.svc.GetOption(ctx.Request.Context(), user, ids[0], ids[1], ids[2])
	if err != nil {
		renderErrorPage(ctx, electionErr(ctx, err, "HandleEditOptionPage -> h.svc.GetOption"), &user)
		return
	}

	ctx.HTML(http.StatusOK, "option_edit.html", page(ctx, "Edit option", &user, gin.H{
		"Election": election,
		"Question": question,
		"Option":   option,
	}))
}

// HandleUpdateOption godoc
// @Summary      Change the value of an option
// @Tags         options
// @Accept       x-www-form-urlencoded,json
// @Param        electionID  path  int                          true  "Election ID"
// @Param        questionID  path  int                          true  "Question ID"
// @Param        optionID    path  int                          true  "Option ID"
// @Param        request     body  request.UpdateOptionRequest  true  "option"
// @Success      302
// @Router       /election/{electionID}/question/{questionID}/option/{optionID}/update [post]
// @Security     SessionCookie
func (h *ElectionHandler) HandleUpdateOption(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErrorPage(ctx, respErr, nil)
		return
	}

	ids, respErr := parseIDs(ctx, "electionID", "questionID", "optionID")
	if respErr != nil {
		renderErrorPage(ctx, respErr, &user)
		return
	}
	questionPage := questionPath(ids[0], ids[1])

	var req request.UpdateOptionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, questionPage, "Invalid option form.")
		return
	}
	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, questionPage, err.Error())
		return
	}

	if _, err := h.svc.EditOption(ctx.Request.Context(), user, ids[0], ids[1], ids[2], req.Value); err != nil {
		formFailed(ctx, err, "HandleUpdateOption -> h.svc.EditOption", questionPage, user)
		return
	}

	ctx.Redirect(http.StatusFound, questionPage)
}

// HandleDeleteOption godoc
// @Summary      Delete an option
// @Tags         options
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Param        questionID  path  int  true  "Question ID"
// @Param        optionID    path  int  true  "Option ID"
// @Success      200  {object}  response.SuccessResponse
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /election/{electionID}/question/{questionID}/option/{optionID} [delete]
// @Security     SessionCookie
func (h *ElectionHandler) HandleDeleteOption(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ids, respErr := parseIDs(ctx, "electionID", "questionID", "optionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteOption(ctx.Request.Context(), user, ids[0], ids[1], ids[2]); err != nil {
		response.RenderErr(ctx, electionErr(ctx, err, "HandleDeleteOption -> h.svc.DeleteOption"))
		return
	}

	ctx.JSON(http.StatusOK, response.SuccessResponse{Success: true})
}
