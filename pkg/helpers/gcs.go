package helpers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) error {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// GCSSigner mints V4 signed GET URLs for objects in one bucket.
type GCSSigner struct {
	Client      *storage.Client
	Bucket      string
	SignerEmail string // optional; detected from credentials when empty
	PrivateKey  []byte // optional PEM key; signs locally instead of through IAM
	now         func() time.Time
}

func NewGCSSigner(client *storage.Client, bucket, signerEmail string) *GCSSigner {
	return &GCSSigner{Client: client, Bucket: bucket, SignerEmail: signerEmail, now: time.Now}
}

// SignedURL returns a URL for object that stops working after ttl.
func (s *GCSSigner) SignedURL(_ context.Context, object string, ttl time.Duration) (string, time.Time, error) {
	if s == nil || s.Client == nil || s.Bucket == "" {
		return "", time.Time{}, errors.New("gcs not configured")
	}
	exp := s.now().Add(ttl).UTC()
	url, err := s.Client.Bucket(s.Bucket).SignedURL(object, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        exp,
		GoogleAccessID: s.SignerEmail,
		PrivateKey:     s.PrivateKey,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return url, exp, nil
}
