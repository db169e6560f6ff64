// Package docstore delivers unit documents. A unit's source kind selects
// the backend: "local" streams the file from disk, "remote" hands the
// client a short-lived signed URL against the object store. The stored
// reference itself never leaves the server.
package docstore

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/edushelf/edushelf/internal/catalogsrv/config"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

var (
	ErrDocumentStore apperrors.Error = apperrors.New("document store error").
				SetStatusCode(http.StatusBadGateway)
	ErrDocumentNotFound apperrors.Error = ErrDocumentStore.New("document not found").
				SetStatusCode(http.StatusNotFound)
	// ErrDocumentNotConfigured means the unit exists but no document was
	// ever attached to it.
	ErrDocumentNotConfigured apperrors.Error = ErrDocumentStore.New("unit has no document").
					SetStatusCode(http.StatusPreconditionFailed)
	ErrInvalidDocumentRef apperrors.Error = ErrDocumentStore.New("invalid document reference").
				SetStatusCode(http.StatusBadRequest)
)

// Document is a resolved delivery. Exactly one of RedirectURL and Body is
// set: a redirect sends the client to a signed URL, a body is streamed
// through the server. The caller owns closing Body.
type Document struct {
	RedirectURL string
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// DocumentStore resolves and stores unit documents.
type DocumentStore interface {
	// Resolve turns a unit's document reference into a Document. Units
	// without a document return ErrDocumentNotConfigured; references that
	// point at nothing return ErrDocumentNotFound.
	Resolve(ctx context.Context, unit *models.Unit) (*Document, apperrors.Error)
	// Put writes a document under the given reference. Used by import
	// tooling, not by the serving path.
	Put(ctx context.Context, ref string, r io.Reader, contentType string) apperrors.Error
	Close()
}

type ctxKeyType string

const docstoreCtxKey ctxKeyType = "DocumentStore"

// SetDocumentStore attaches a store to the context.
func SetDocumentStore(ctx context.Context, s DocumentStore) context.Context {
	return context.WithValue(ctx, docstoreCtxKey, s)
}

// FromContext retrieves the store from the context, nil when absent.
func FromContext(ctx context.Context) DocumentStore {
	if s, ok := ctx.Value(docstoreCtxKey).(DocumentStore); ok {
		return s
	}
	return nil
}

// LoadDocumentStore returns a middleware that attaches the store to every
// request context.
func LoadDocumentStore(s DocumentStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := SetDocumentStore(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// New builds the store selected by the storage configuration.
func New(ctx context.Context, cfg config.StorageConfig) (DocumentStore, apperrors.Error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocal(cfg.LocalRoot), nil
	case "gcs":
		return NewRemote(ctx, cfg.Bucket, cfg.SignedURLValidity())
	default:
		return nil, ErrDocumentStore.Msg("unknown storage backend: " + cfg.Backend)
	}
}

// cleanRef normalizes a stored reference to a relative slash path. Absolute
// paths and parent escapes are rejected, they would reach outside the
// configured root.
func cleanRef(ref string) (string, apperrors.Error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "\\", "/")
	if ref == "" {
		return "", ErrInvalidDocumentRef.Msg("empty document reference")
	}
	cleaned := path.Clean("/" + ref)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidDocumentRef
	}
	return cleaned, nil
}

func contentTypeForRef(ref string) string {
	switch strings.ToLower(path.Ext(ref)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
