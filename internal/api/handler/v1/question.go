package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/request"
	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
)

func questionPath(electionID, questionID uint) string {
	return fmt.Sprintf("/election/%d/question/%d", electionID, questionID)
}

// parseIDs reads the named path params in order.
func parseIDs(ctx *gin.Context, params ...string) ([]uint, *response.Err) {
	ids := make([]uint, 0, len(params))
	for _, param := range params {
		id, respErr := parseID(ctx, param)
		if respErr != nil {
			return nil, respErr
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// HandleListQuestions godoc
// @Summary      List the questions of an election
// @Tags         questions
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Success      200  {array}   domain.Question
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /election/{electionID}/questions [get]
// @Security     SessionCookie
func (h *ElectionHandler) HandleListQuestions(ctx *gin.Context) {
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

	questions, err := h.svc.ListQuestions(ctx.Request.Context(), user, electionID)
	if err != nil {
		response.RenderErr(ctx, electionErr(ctx, err, "HandleListQuestions -> h.svc.ListQuestions"))
		return
	}

	ctx.JSON(http.StatusOK, questions)
}

// HandleAddQuestion godoc
// @Summary      Append a question to a draft election
// @Tags         questions
// @Accept       x-www-form-urlencoded,json
// @Param        electionID  path  int                      true  "Election ID"
// @Param        request     body  request.QuestionRequest  true  "question"
// @Success      302
// @Router       /election/{electionID}/questions/add [post]
// @Security     SessionCookie
func (h *ElectionHandler) HandleAddQuestion(ctx *gin.Context) {
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

	var req request.QuestionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, back, "Invalid question form.")
		return
	}
	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, back, err.Error())
		return
	}

	if _, err := h.svc.AddQuestion(ctx.Request.Context(), user, electionID, req.Title, req.Description); err != nil {
		formFailed(ctx, err, "HandleAddQuestion -> h.svc.AddQuestion", back, user)
		return
	}

	ctx.Redirect(http.StatusFound, back)
}

// HandleGetQuestion godoc
// @Summary      Get a question with its options
// @Tags         questions
// @Produce      html,json
// @Param        electionID  path  int  true  "Election ID"
// @Param        questionID  path  int  true  "Question ID"
// @Success      200  {object}  domain.Question
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /election/{electionID}/question/{questionID} [get]
// @Security     SessionCookie
func (h *ElectionHandler) HandleGetQuestion(ctx *gin.Context) {
	h.renderQuestion(ctx, "question.html", "HandleGetQuestion")
}

func (h *ElectionHandler) HandleEditQuestionPage(ctx *gin.Context) {
	h.renderQuestion(ctx, "question_edit.html", "HandleEditQuestionPage")
}

func (h *ElectionHandler) renderQuestion(ctx *gin.Context, tmpl, op string) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErr(ctx, respErr, nil, gin.MIMEHTML)
		return
	}

	ids, respErr := parseIDs(ctx, "electionID", "questionID")
	if respErr != nil {
		renderErr(ctx, respErr, &user, gin.MIMEHTML)
		return
	}

	election, err := h.svc.GetElection(ctx.Request.Context(), user, ids[0])
	if err != nil {
		renderErr(ctx, electionErr(ctx, err, op+" -> h.svc.GetElection"), &user, gin.MIMEHTML)
		return
	}

	question, err := h.svc.GetQuestion(ctx.Request.Context(), user, ids[0], ids[1])
	if err != nil {
		renderErr(ctx, electionErr(ctx, err, op+" -> h.svc.GetQuestion"), &user, gin.MIMEHTML)
		return
	}

	if !wantsHTML(ctx, gin.MIMEHTML) {
		ctx.JSON(http.StatusOK, question)
		return
	}

	ctx.HTML(http.StatusOK, tmpl, page(ctx, question.Title, &user, gin.H{
		"Election": election,
		"Question": question,
	}))
}

// HandleUpdateQuestion godoc
// @Summary      Edit a question of a draft election
// @Tags         questions
// @Accept       x-www-form-urlencoded,json
// @Param        electionID  path  int                      true  "Election ID"
// @Param        questionID  path  int                      true  "Question ID"
// @Param        request     body  request.QuestionRequest  true  "question"
// @Success      302
// @Router       /election/{electionID}/question/{questionID}/update [post]
// @Security     SessionCookie
func (h *ElectionHandler) HandleUpdateQuestion(ctx *gin.Context) {
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
	back := questionPath(ids[0], ids[1]) + "/edit"

	var req request.QuestionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		redirectWithFlash(ctx, back, "Invalid question form.")
		return
	}
	if err := req.Validate(); err != nil {
		redirectWithFlash(ctx, back, err.Error())
		return
	}

	if _, err := h.svc.EditQuestion(ctx.Request.Context(), user, ids[0], ids[1], req.Title, req.Description); err != nil {
		formFailed(ctx, err, "HandleUpdateQuestion -> h.svc.EditQuestion", back, user)
		return
	}

	ctx.Redirect(http.StatusFound, electionPath(ids[0]))
}

// HandleDeleteQuestion godoc
// @Summary      Delete a question and its options
// @Tags         questions
// @Produce      json
// @Param        electionID  path  int  true  "Election ID"
// @Param        questionID  path  int  true  "Question ID"
// @Success      200  {object}  response.SuccessResponse
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /election/{electionID}/question/{questionID} [delete]
// @Security     SessionCookie
func (h *ElectionHandler) HandleDeleteQuestion(ctx *gin.Context) {
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

	if err := h.svc.DeleteQuestion(ctx.Request.Context(), user, ids[0], ids[1]); err != nil {
		response.RenderErr(ctx, electionErr(ctx, err, "HandleDeleteQuestion -> h.svc.DeleteQuestion"))
		return
	}

	ctx.JSON(http.StatusOK, response.SuccessResponse{Success: true})
}
