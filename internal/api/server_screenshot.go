package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/dgnsrekt/browser_agent/internal/screenshot"
)

func registerScreenshotHandlers(router chi.Router, api huma.API, svc Service) {
	type listOutput struct {
		Body struct {
			Screenshots []screenshot.Meta `json:"screenshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-screenshots", Method: http.MethodGet, Path: "/screenshots", Summary: "List stored screenshots", Tags: []string{"Screenshots"}},
		func(ctx context.Context, input *struct{}) (*listOutput, error) {
			metas, err := svc.Screenshots()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listOutput{}
			out.Body.Screenshots = metas
			return out, nil
		})

	// Raw image bytes bypass huma: the body is the image itself.
	router.Get("/screenshots/{id}/image", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, mime, err := svc.ScreenshotImage(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			slog.Debug("screenshot image write failed", "id", id, "error", err)
		}
	})
}
