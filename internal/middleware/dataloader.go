package middleware

import (
	"context"
	"net/http"

	"github.com/graph-gophers/dataloader"

	"github.com/mfgpilot/traceability/internal/lploader"
	"github.com/mfgpilot/traceability/internal/repository"
)

type ctxKey string

const lpLoaderKey ctxKey = "lpLoader"

// DataLoaderMiddleware attaches a fresh LP loader to each request context so
// every trace within the request batches its snapshot loads.
func DataLoaderMiddleware(repo repository.LineageRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := lploader.NewLPLoader(repo)

			ctx := context.WithValue(r.Context(), lpLoaderKey, loader.Loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LPLoaderFromContext retrieves the dataloader from context
func LPLoaderFromContext(ctx context.Context) *dataloader.Loader {
	if l, ok := ctx.Value(lpLoaderKey).(*dataloader.Loader); ok {
		return l
	}
	return nil
}
