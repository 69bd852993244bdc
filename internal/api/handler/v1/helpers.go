package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swapnest/swapnest-api/internal/api/handler/v1/response"
	"github.com/swapnest/swapnest-api/internal/api/middleware"
)

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getUserIDFromContext(ctx *gin.Context) (string, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return "", response.ErrUnauthorized(errors.New("user not authenticated"))
	}

	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", response.ErrUnauthorized(errors.New("user not authenticated"))
	}

	return userID, nil
}
