package db

import (
	"net/http"
)

// LoadCatalogStore returns a middleware that attaches the store to every
// request context so handlers can reach it via db.DB(ctx).
func LoadCatalogStore(s CatalogStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := SetCatalogStore(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
