// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/repositories"
	"github.com/hearthline/commerce-api/internal/services"
	"github.com/hearthline/commerce-api/internal/utils"
)

// respondError maps service sentinels onto HTTP statuses. Anything
// unclassified is logged and reported as an internal error.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrAsset):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, repositories.ErrRecordNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrNoChange):
		utils.ErrorResponse(c, http.StatusConflict, "NO_CHANGE", err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, err.Error())
	}
}
