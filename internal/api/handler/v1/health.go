package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/election-admin/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.HealthResponse
// @Router       /health [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}

func HandleRoot(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/home")
}
