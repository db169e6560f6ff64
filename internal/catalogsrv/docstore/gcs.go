package docstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"

	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

const headTimeout = 5 * time.Second

type remoteStore struct {
	client *storage.Client
	bucket string
	ttl    time.Duration

	// Indirection over the bucket calls so delivery logic is testable
	// without credentials.
	head func(ctx context.Context, key string) error
	sign func(key string, opts *storage.SignedURLOptions) (string, error)
}

// NewRemote returns a store that delivers documents as signed URLs against
// the given bucket.
func NewRemote(ctx context.Context, bucket string, ttl time.Duration) (DocumentStore, apperrors.Error) {
	if bucket == "" {
		return nil, ErrDocumentStore.Msg("storage bucket must be configured")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, ErrDocumentStore.MsgErr("failed to create storage client", err)
	}
	rs := &remoteStore{client: client, bucket: bucket, ttl: ttl}
	rs.head = func(ctx context.Context, key string) error {
		_, err := client.Bucket(bucket).Object(key).Attrs(ctx)
		return err
	}
	rs.sign = func(key string, opts *storage.SignedURLOptions) (string, error) {
		return client.Bucket(bucket).SignedURL(key, opts)
	}
	return rs, nil
}

func (rs *remoteStore) Resolve(ctx context.Context, unit *models.Unit) (*Document, apperrors.Error) {
	if !unit.HasDocument() {
		return nil, ErrDocumentNotConfigured
	}
	if unit.SourceKind != models.SourceRemote {
		return nil, ErrInvalidDocumentRef.Msg("unit document is not stored remotely")
	}
	key, err := cleanRef(unit.SourceRef)
	if err != nil {
		return nil, err
	}

	headCtx, cancel := context.WithTimeout(ctx, headTimeout)
	defer cancel()
	if herr := rs.head(headCtx, key); herr != nil {
		if errors.Is(herr, storage.ErrObjectNotExist) {
			log.Ctx(ctx).Info().Str("unit", unit.ID).Str("key", key).Msg("document object missing")
			return nil, ErrDocumentNotFound
		}
		// The existence check is best effort. A flaky metadata read must
		// not block delivery when the signed URL may still work.
		log.Ctx(ctx).Warn().Err(herr).Str("key", key).Msg("document existence check failed")
	}

	url, serr := rs.sign(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(rs.ttl),
	})
	if serr != nil {
		log.Ctx(ctx).Error().Err(serr).Str("key", key).Msg("failed to sign document url")
		return nil, ErrDocumentStore.MsgErr("failed to sign document url", serr)
	}
	return &Document{
		RedirectURL: url,
		ContentType: contentTypeForRef(key),
	}, nil
}

func (rs *remoteStore) Put(ctx context.Context, ref string, r io.Reader, contentType string) apperrors.Error {
	key, err := cleanRef(ref)
	if err != nil {
		return err
	}
	w := rs.client.Bucket(rs.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, cerr := io.Copy(w, r); cerr != nil {
		w.Close()
		return ErrDocumentStore.MsgErr("failed to upload document", cerr)
	}
	if cerr := w.Close(); cerr != nil {
		return ErrDocumentStore.MsgErr("failed to finalize document upload", cerr)
	}
	return nil
}

func (rs *remoteStore) Close() {
	if rs.client != nil {
		rs.client.Close()
	}
}
