package apis

import (
	"net/http"
	"strconv"

	"github.com/edushelf/edushelf/internal/catalogsrv/catalogmanager"
	"github.com/edushelf/edushelf/internal/catalogsrv/docstore"
	"github.com/edushelf/edushelf/internal/common/httpx"
)

// getUnitDocument delivers the unit's document. Local documents stream
// through the server with no-store caching headers; remote documents
// redirect to a short-lived signed URL. Either way the stored reference
// stays server-side.
func getUnitDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	unit, err := catalogmanager.GetUnit(ctx, refParam(r, "unitRef"))
	if err != nil {
		return nil, err
	}

	store := docstore.FromContext(ctx)
	if store == nil {
		return nil, docstore.ErrDocumentStore.Msg("no document store configured")
	}

	doc, derr := store.Resolve(ctx, unit)
	if derr != nil {
		return nil, derr
	}

	if doc.RedirectURL != "" {
		return &httpx.Response{
			StatusCode: http.StatusFound,
			Location:   doc.RedirectURL,
			Response:   map[string]string{"url": doc.RedirectURL},
		}, nil
	}

	header := http.Header{}
	header.Set("Cache-Control", "no-store")
	if doc.Size > 0 {
		header.Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	return &httpx.Response{
		StatusCode:  http.StatusOK,
		ContentType: doc.ContentType,
		Header:      header,
		Body:        doc.Body,
	}, nil
}
