package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/storage/blobdb"
	"github.com/bukhari/academy/storage/document"
)

type syncApi struct {
	store *blobdb.DB
}

func registerSyncAPI(g *echo.Group, conf *core.Config, store *blobdb.DB) {
	api := syncApi{store: store}

	sg := g.Group("/sync",
		apiKeyMiddleware(conf),
		middleware.BodyLimit(fmt.Sprintf("%dB", conf.Sync.MaxDocumentSize)),
	)
	sg.GET("", api.retrieve)
	sg.PUT("", api.replace)
}

// Handlers

func (api *syncApi) retrieve(ctx echo.Context) error {
	doc, err := api.store.Snapshot(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "snapshotting document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *syncApi) replace(ctx echo.Context) error {
	var doc document.Document
	if err := ctx.Bind(&doc); err != nil {
		return errors.Wrap(err, "binding to Document")
	}
	if !doc.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "profiles", Error: "profiles array is required"})
	}

	version, err := api.store.Replace(ctx.Request().Context(), &doc)
	if err != nil {
		return errors.Wrap(err, "replacing document")
	}
	return ctx.JSON(http.StatusOK, SyncResponse{
		Version:    version,
		Profiles:   len(doc.Profiles),
		LastUpdate: time.Now().UTC(),
	})
}

type SyncResponse struct {
	Version    int64     `json:"version"`
	Profiles   int       `json:"profiles"`
	LastUpdate time.Time `json:"last_update"`
}
