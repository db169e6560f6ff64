// Package server assembles the catalog HTTP server: middleware stack,
// store wiring, and route mounting.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/apis"
	"github.com/edushelf/edushelf/internal/catalogsrv/config"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dbmanager"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/postgresql"
	"github.com/edushelf/edushelf/internal/catalogsrv/docstore"
	"github.com/edushelf/edushelf/internal/common/httpx"
	commonmiddleware "github.com/edushelf/edushelf/internal/common/middleware"
)

const (
	serverVersion = "Edushelf Catalog Server: 0.1.0"
	apiVersion    = "v1"
)

type CatalogServer struct {
	Router *chi.Mux
	store  db.CatalogStore
	docs   docstore.DocumentStore
}

// CreateNewServer opens the database pool and document store from the
// loaded configuration.
func CreateNewServer(ctx context.Context) (*CatalogServer, error) {
	pool, err := dbmanager.NewPostgresqlDb(ctx, config.Config().Database.Dsn())
	if err != nil {
		return nil, err
	}
	docs, derr := docstore.New(ctx, config.Config().Storage)
	if derr != nil {
		pool.Close()
		return nil, derr
	}
	return NewWithStores(postgresql.New(pool), docs), nil
}

// NewWithStores builds a server over explicit stores. Tests use this with
// the in-memory store and a local document root.
func NewWithStores(store db.CatalogStore, docs docstore.DocumentStore) *CatalogServer {
	s := &CatalogServer{
		Router: chi.NewRouter(),
		store:  store,
		docs:   docs,
	}
	return s
}

func (s *CatalogServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	s.Router.Route("/", s.mountResourceHandlers)
}

func (s *CatalogServer) mountResourceHandlers(r chi.Router) {
	r.Use(db.LoadCatalogStore(s.store))
	r.Use(docstore.LoadDocumentStore(s.docs))
	apis.Router(r)
	r.Get("/version", s.getVersion)
}

// Close releases the server's stores.
func (s *CatalogServer) Close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.docs != nil {
		s.docs.Close()
	}
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *CatalogServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: serverVersion,
		ApiVersion:    apiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}
