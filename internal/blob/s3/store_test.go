package s3

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kailas-cloud/herbadex/internal/domain"
)

type mockPresigner struct {
	putFn func(ctx context.Context, params *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error)
	getFn func(ctx context.Context, params *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error)
}

func (m *mockPresigner) PresignPutObject(
	ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	if m.putFn != nil {
		return m.putFn(ctx, params)
	}
	return &v4.PresignedHTTPRequest{URL: "https://blob.example/put"}, nil
}

func (m *mockPresigner) PresignGetObject(
	ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	if m.getFn != nil {
		return m.getFn(ctx, params)
	}
	return &v4.PresignedHTTPRequest{URL: "https://blob.example/get"}, nil
}

func newTestStore(p presigner) *Store {
	return &Store{
		presign:   p,
		bucket:    "scans",
		keyPrefix: "scans/",
		uploadTTL: 15 * time.Minute,
		fetchTTL:  24 * time.Hour,
	}
}

func TestResolveUploadTarget(t *testing.T) {
	mp := &mockPresigner{}
	var gotInput *s3.PutObjectInput
	mp.putFn = func(_ context.Context, params *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
		gotInput = params
		return &v4.PresignedHTTPRequest{URL: "https://blob.example/put?sig=abc"}, nil
	}

	store := newTestStore(mp)
	target, err := store.ResolveUploadTarget(context.Background(), "image/jpeg")
	if err != nil {
		t.Fatalf("ResolveUploadTarget() error = %v", err)
	}

	if *gotInput.Bucket != "scans" {
		t.Errorf("bucket = %q, want scans", *gotInput.Bucket)
	}
	if *gotInput.ContentType != "image/jpeg" {
		t.Errorf("contentType = %q, want image/jpeg", *gotInput.ContentType)
	}
	if !strings.HasPrefix(*gotInput.Key, "scans/") {
		t.Errorf("key = %q, want scans/ prefix", *gotInput.Key)
	}
	if target.Key != *gotInput.Key {
		t.Errorf("target.Key = %q, presigned key = %q", target.Key, *gotInput.Key)
	}
	if target.URL != "https://blob.example/put?sig=abc" {
		t.Errorf("target.URL = %q", target.URL)
	}
	if target.ExpiresAt.Before(time.Now()) {
		t.Errorf("ExpiresAt = %v is in the past", target.ExpiresAt)
	}
}

func TestResolveUploadTargetUniqueKeys(t *testing.T) {
	store := newTestStore(&mockPresigner{})

	a, err := store.ResolveUploadTarget(context.Background(), "image/png")
	if err != nil {
		t.Fatalf("ResolveUploadTarget() error = %v", err)
	}
	b, err := store.ResolveUploadTarget(context.Background(), "image/png")
	if err != nil {
		t.Fatalf("ResolveUploadTarget() error = %v", err)
	}
	if a.Key == b.Key {
		t.Errorf("two targets share key %q", a.Key)
	}
}

func TestResolveUploadTargetError(t *testing.T) {
	mp := &mockPresigner{}
	mp.putFn = func(_ context.Context, _ *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("signing key unavailable")
	}

	store := newTestStore(mp)
	if _, err := store.ResolveUploadTarget(context.Background(), "image/jpeg"); !errors.Is(err, domain.ErrBlobResolution) {
		t.Errorf("error = %v, want ErrBlobResolution", err)
	}
}

func TestResolveFetchURL(t *testing.T) {
	mp := &mockPresigner{}
	mp.getFn = func(_ context.Context, params *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error) {
		if *params.Key != "scans/abc" {
			t.Errorf("key = %q, want scans/abc", *params.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "https://blob.example/get?sig=xyz"}, nil
	}

	store := newTestStore(mp)
	url, err := store.ResolveFetchURL(context.Background(), "scans/abc")
	if err != nil {
		t.Fatalf("ResolveFetchURL() error = %v", err)
	}
	if url != "https://blob.example/get?sig=xyz" {
		t.Errorf("url = %q", url)
	}
}

func TestResolveFetchURLError(t *testing.T) {
	mp := &mockPresigner{}
	mp.getFn = func(_ context.Context, _ *s3.GetObjectInput) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("bucket gone")
	}

	store := newTestStore(mp)
	if _, err := store.ResolveFetchURL(context.Background(), "scans/abc"); !errors.Is(err, domain.ErrBlobResolution) {
		t.Errorf("error = %v, want ErrBlobResolution", err)
	}
}
