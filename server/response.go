package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/streamupload/errors"
	"github.com/kbukum/streamupload/server/middleware"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err as an error envelope carrying the request id.
// Errors that are not AppErrors become a 500 without their message.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	resp := appErr.ToResponse()
	if c.Request != nil {
		resp.Error.RequestID = c.GetHeader(middleware.RequestIDHeader)
	}
	c.JSON(appErr.HTTPStatus, resp)
}

// RespondCreated sends a 201 wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}
