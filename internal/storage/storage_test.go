package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "u1/p1.jpg", PhotoKey("u1", "p1", "Beach.JPG"))
	assert.Equal(t, "u1/p1", PhotoKey("u1", "p1", "noext"))
	// same user, same instant, same name: the photo id keeps keys apart
	assert.NotEqual(t, PhotoKey("u1", "p1", "a.jpg"), PhotoKey("u1", "p2", "a.jpg"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("http://local")

	require.NoError(t, m.Put(ctx, "a/b.png", "image/png", []byte{1, 2, 3}))
	obj, ok := m.Get("a/b.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "http://local/a/b.png", m.URL("a/b.png"))

	link, err := m.PresignGet(ctx, "a/b.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://local/a/b.png?expires=60", link)

	require.NoError(t, m.Delete(ctx, "a/b.png"))
	assert.Equal(t, 0, m.Len())
	_, err = m.PresignGet(ctx, "a/b.png", time.Minute)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3Store_URL(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts S3Options
		want string
	}{
		{
			name: "aws virtual hosted",
			opts: S3Options{Bucket: "photos", Region: "us-east-1", AccessKey: "k", SecretKey: "s"},
			want: "https://photos.s3.us-east-1.amazonaws.com/u/u-1.jpg",
		},
		{
			name: "custom endpoint",
			opts: S3Options{Bucket: "photos", Region: "us-east-1", Endpoint: "http://minio:9000/", AccessKey: "k", SecretKey: "s"},
			want: "http://minio:9000/photos/u/u-1.jpg",
		},
		{
			name: "public base url wins",
			opts: S3Options{Bucket: "photos", Region: "us-east-1", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.example.com/", AccessKey: "k", SecretKey: "s"},
			want: "https://cdn.example.com/u/u-1.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3Store(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.URL("u/u-1.jpg"))
		})
	}

	_, err := NewS3Store(ctx, S3Options{})
	assert.Error(t, err)
}

func TestS3Store_PresignGet(t *testing.T) {
	s, err := NewS3Store(context.Background(), S3Options{
		Bucket:       "photos",
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	link, err := s.PresignGet(context.Background(), "u/u-1.jpg", 10*time.Minute)
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", parsed.Host)
	assert.Equal(t, "/photos/u/u-1.jpg", parsed.Path)
	assert.Equal(t, "600", parsed.Query().Get("X-Amz-Expires"))
}
