package s3storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestStoreUploadsPublicJPEG(t *testing.T) {
	put := &fakePutter{}
	s := &Storage{client: put, region: "ap-northeast-2"}

	url, err := s.Store(context.Background(), []byte("img"), "objects", "dev/2/a.jpg", true)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if url != "https://objects.s3.ap-northeast-2.amazonaws.com/dev/2/a.jpg" {
		t.Errorf("url = %q", url)
	}
	if aws.ToString(put.input.Bucket) != "objects" || aws.ToString(put.input.Key) != "dev/2/a.jpg" {
		t.Errorf("input = %+v", put.input)
	}
	if put.input.ACL != types.ObjectCannedACLPublicRead {
		t.Errorf("ACL = %q, want public-read", put.input.ACL)
	}
	if string(put.body) != "img" {
		t.Errorf("body = %q", put.body)
	}
}

func TestStoreCustomEndpointAndPrivate(t *testing.T) {
	put := &fakePutter{}
	s := &Storage{client: put, region: "us-east-1", endpoint: "http://minio:9000"}

	url, err := s.Store(context.Background(), []byte("img"), "objects", "k.jpg", false)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if url != "http://minio:9000/objects/k.jpg" {
		t.Errorf("url = %q", url)
	}
	if put.input.ACL != "" {
		t.Errorf("ACL = %q, want none", put.input.ACL)
	}
}

func TestStorePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s := &Storage{client: &fakePutter{err: boom}, region: "us-east-1"}

	if _, err := s.Store(context.Background(), nil, "b", "k", true); !errors.Is(err, boom) {
		t.Errorf("Store() error = %v, want wrapped boom", err)
	}
}

func TestFilesystemStorage(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFilesystemStorage(dir, "http://cdn.local")
	if err != nil {
		t.Fatalf("NewFilesystemStorage() error = %v", err)
	}

	url, err := fs.Store(context.Background(), []byte("img"), "objects", "dev/2/a.jpg", true)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if url != "http://cdn.local/objects/dev/2/a.jpg" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "objects", "dev", "2", "a.jpg"))
	if err != nil || string(data) != "img" {
		t.Errorf("file = %q, %v", data, err)
	}

	if _, err := fs.Store(context.Background(), []byte("x"), "objects", "../../escape.jpg", true); err == nil {
		t.Error("Store() accepted a traversing key")
	}
}
