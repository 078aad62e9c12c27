package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound is returned by object stores for missing keys.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore persists uploaded image bytes under keys and resolves their public URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
	// Key reverses URL; ok is false for URLs this store did not produce.
	Key(url string) (key string, ok bool)
}

// Config selects the object store backend.
type Config struct {
	Endpoint      string `env:"BONITA_FORWARD_S3_ENDPOINT"`
	AccessKey     string `env:"BONITA_FORWARD_S3_ACCESS_KEY"`
	SecretKey     string `env:"BONITA_FORWARD_S3_SECRET_KEY"`
	Region        string `env:"BONITA_FORWARD_S3_REGION"`
	Bucket        string `env:"BONITA_FORWARD_S3_BUCKET" envDefault:"provider-images"`
	UseSSL        bool   `env:"BONITA_FORWARD_S3_USE_SSL" envDefault:"true"`
	PublicBaseURL string `env:"BONITA_FORWARD_S3_PUBLIC_URL"`
}

// MemoryPrefix is the URL path the in-memory store serves objects under.
const MemoryPrefix = "/media/"

// NewObjectStore returns an S3-compatible store when an endpoint is configured,
// otherwise an in-memory store.
func NewObjectStore(ctx context.Context, cfg Config) (ObjectStore, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return NewMemoryStore(MemoryPrefix), nil
	}
	return NewMinioStore(ctx, cfg)
}

// MinioStore stores objects in one bucket of an S3-compatible server.
type MinioStore struct {
	client *minio.Client
	bucket string
	base   string
}

// NewMinioStore connects to the endpoint and creates the bucket when missing.
func NewMinioStore(ctx context.Context, cfg Config) (*MinioStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + endpoint + "/" + bucket
	}
	return &MinioStore{client: client, bucket: bucket, base: base}, nil
}

// Put uploads data with a long-lived cache header.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Missing objects are not an error.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// URL implements ObjectStore.
func (s *MinioStore) URL(key string) string {
	return s.base + "/" + key
}

// Key implements ObjectStore.
func (s *MinioStore) Key(url string) (string, bool) {
	return trimBase(url, s.base+"/")
}

// MemoryStore keeps objects in process memory and serves them over HTTP.
type MemoryStore struct {
	prefix string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore builds an empty store whose URLs start with prefix.
func NewMemoryStore(prefix string) *MemoryStore {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &MemoryStore{prefix: prefix, objects: make(map[string]memoryObject)}
}

// Put implements ObjectStore.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: bytes.Clone(data), contentType: contentType}
	return nil
}

// Remove implements ObjectStore.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns a stored object.
func (s *MemoryStore) Get(key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	object, ok := s.objects[key]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return bytes.Clone(object.data), object.contentType, nil
}

// URL implements ObjectStore.
func (s *MemoryStore) URL(key string) string {
	return s.prefix + key
}

// Key implements ObjectStore.
func (s *MemoryStore) Key(url string) (string, bool) {
	return trimBase(url, s.prefix)
}

// Prefix returns the URL path objects are served under.
func (s *MemoryStore) Prefix() string {
	return s.prefix
}

// ServeHTTP serves stored objects by URL path.
func (s *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := s.Key(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, contentType, err := s.Get(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

func trimBase(url, base string) (string, bool) {
	key, ok := strings.CutPrefix(strings.TrimSpace(url), base)
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
