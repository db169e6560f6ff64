package docstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

type localStore struct {
	root string
}

// NewLocal returns a store that serves documents from files under root.
func NewLocal(root string) DocumentStore {
	return &localStore{root: root}
}

func (ls *localStore) Resolve(ctx context.Context, unit *models.Unit) (*Document, apperrors.Error) {
	if !unit.HasDocument() {
		return nil, ErrDocumentNotConfigured
	}
	if unit.SourceKind != models.SourceLocal {
		return nil, ErrInvalidDocumentRef.Msg("unit document is not stored locally")
	}
	ref, err := cleanRef(unit.SourceRef)
	if err != nil {
		log.Ctx(ctx).Error().Str("unit", unit.ID).Msg("rejecting unsafe document reference")
		return nil, err
	}

	full := filepath.Join(ls.root, filepath.FromSlash(ref))
	f, oerr := os.Open(full)
	if oerr != nil {
		if os.IsNotExist(oerr) {
			log.Ctx(ctx).Info().Str("unit", unit.ID).Str("ref", ref).Msg("document file missing")
			return nil, ErrDocumentNotFound
		}
		log.Ctx(ctx).Error().Err(oerr).Str("unit", unit.ID).Msg("failed to open document")
		return nil, ErrDocumentStore.Err(oerr)
	}
	info, serr := f.Stat()
	if serr != nil || info.IsDir() {
		f.Close()
		if serr != nil {
			return nil, ErrDocumentStore.Err(serr)
		}
		return nil, ErrDocumentNotFound
	}
	return &Document{
		Body:        f,
		ContentType: contentTypeForRef(ref),
		Size:        info.Size(),
	}, nil
}

func (ls *localStore) Put(ctx context.Context, ref string, r io.Reader, contentType string) apperrors.Error {
	cleaned, err := cleanRef(ref)
	if err != nil {
		return err
	}
	full := filepath.Join(ls.root, filepath.FromSlash(cleaned))
	if merr := os.MkdirAll(filepath.Dir(full), 0o755); merr != nil {
		return ErrDocumentStore.Err(merr)
	}
	f, cerr := os.Create(full)
	if cerr != nil {
		return ErrDocumentStore.Err(cerr)
	}
	defer f.Close()
	if _, werr := io.Copy(f, r); werr != nil {
		return ErrDocumentStore.Err(werr)
	}
	return nil
}

func (ls *localStore) Close() {}
