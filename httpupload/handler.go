// Package httpupload exposes the uploader over HTTP. The request body is
// streamed straight into the uploader; nothing is buffered beyond what the
// storage backend needs.
package httpupload

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamupload/errors"
	"github.com/kbukum/streamupload/server"
	"github.com/kbukum/streamupload/server/middleware"
	"github.com/kbukum/streamupload/upload"
)

// FilenameHeader carries the declared destination filename, a path relative
// to the upload folder.
const FilenameHeader = "X-Filename"

// Uploader is the part of the uploader the handler drives. *upload.Uploader
// and *upload.Component both satisfy it.
type Uploader interface {
	Upload(ctx context.Context, src io.Reader, req upload.Request) (*upload.Result, error)
}

// Handler serves uploads.
type Handler struct {
	uploader Uploader
}

// NewHandler creates a Handler backed by u.
func NewHandler(u Uploader) *Handler {
	return &Handler{uploader: u}
}

// Register mounts the upload routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/uploads", h.Upload)
}

// Upload handles POST /uploads. The declared type comes from Content-Type and
// the destination from X-Filename, confined to the upload folder; without it
// a unique key is generated. Absolute or escaping names answer 400, policy
// rejections 403, backend failures 502.
func (h *Handler) Upload(c *gin.Context) {
	req := upload.Request{
		Type:      c.ContentType(),
		Filename:  c.GetHeader(FilenameHeader),
		RequestID: c.GetHeader(middleware.RequestIDHeader),
		Confine:   true,
	}
	if req.Type == "" {
		server.RespondWithError(c, errors.InvalidInput("Content-Type", "is required"))
		return
	}

	res, err := h.uploader.Upload(c.Request.Context(), c.Request.Body, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, res)
}
