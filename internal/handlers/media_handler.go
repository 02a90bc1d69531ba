package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/anonto42/cookbook/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ImageOpener streams stored images by id
type ImageOpener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// MediaHandler serves images kept in the GridFS store
type MediaHandler struct {
	images ImageOpener
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(images ImageOpener) *MediaHandler {
	return &MediaHandler{images: images}
}

// RegisterMediaRoutes registers the image route under the media prefix
func (h *MediaHandler) RegisterMediaRoutes(e *echo.Echo) {
	e.GET(storage.MediaPrefix+":id", h.GetImage)
}

func (h *MediaHandler) GetImage(c echo.Context) error {
	stream, contentType, err := h.images.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Image not found")
		}
		logrus.WithError(err).WithField("image_id", c.Param("id")).Error("Failed to open image")
		return echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred")
	}
	defer stream.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, stream)
}
