package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/givebridge-backend/internal/platform/apierr"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
)

// Every payload carries a success flag; failures carry a message and nothing
// else, so error responses never leak internals.

func Respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// RespondDomainError maps domain errors onto their status codes and funnels
// everything unexpected into a generic 500.
func RespondDomainError(c *gin.Context, log *logger.Logger, err error) {
	if ae := apierr.From(err); ae != nil && ae.Status != 0 {
		RespondError(c, ae.Status, ae.Error())
		return
	}
	if log != nil {
		log.Error("Unhandled request error",
			"path", c.FullPath(),
			"error", err,
		)
	}
	RespondError(c, http.StatusInternalServerError, "internal server error")
}
