// Package gcsstore keeps uploaded statement PDFs in a Google Cloud Storage
// bucket. Raw statements are retained so a parsing run can always be replayed
// against the original file.
package gcsstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const uploadTimeout = 2 * time.Minute

// Store wraps a single bucket. It assumes Application Default Credentials
// are configured.
type Store struct {
	client *storage.Client
	bucket string
}

func New(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsstore.New: create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// UploadStatement streams a statement PDF into the bucket and returns its
// gs:// URI.
func (s *Store) UploadStatement(ctx context.Context, objectName string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadStatement: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadStatement: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Fetch downloads the object bytes for the given gs:// URI. The URI may
// point at any bucket, not just the store's own.
func (s *Store) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ListStatements returns the gs:// URIs of all objects under the given
// prefix, e.g. "statements/".
func (s *Store) ListStatements(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var uris []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListStatements: iterating objects: %w", err)
		}
		// Folder placeholder objects end with "/".
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		uris = append(uris, fmt.Sprintf("gs://%s/%s", s.bucket, attrs.Name))
	}
	return uris, nil
}

// ParseURI splits a gs:// URI into bucket and object path.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI extracts the bare filename from a gs:// URI.
// e.g. "gs://bucket/statements/oct.pdf" -> "oct.pdf"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
