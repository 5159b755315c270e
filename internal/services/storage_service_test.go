package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/pollopollo-backend/internal/config"
)

func TestThumbnailURLWithoutS3(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	assert.Equal(t, "", svc.ThumbnailURL(""))
	assert.Equal(t, "static/ana.png", svc.ThumbnailURL("ana.png"))
	assert.Equal(t, "static/ana.png", svc.ThumbnailURL("/static/ana.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", svc.ThumbnailURL("https://cdn.example.com/a.png"))
}

func TestThumbnailURLPrefersCloudFront(t *testing.T) {
	svc, err := NewStorageService(&config.Config{AWS: config.AWSConfig{CloudFrontURL: "https://d111.cloudfront.net/"}})
	require.NoError(t, err)

	assert.Equal(t, "https://d111.cloudfront.net/users/ana.png", svc.ThumbnailURL("users/ana.png"))
}

func TestThumbnailURLPresignsS3Objects(t *testing.T) {
	svc, err := NewStorageService(&config.Config{AWS: config.AWSConfig{
		Region:          "eu-west-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		S3Bucket:        "pollopollo-images",
		PresignTTL:      5,
	}})
	require.NoError(t, err)

	url := svc.ThumbnailURL("users/ana.png")
	assert.True(t, strings.HasPrefix(url, "https://pollopollo-images.s3.eu-west-1.amazonaws.com/users/ana.png?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=300")
}
