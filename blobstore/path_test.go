package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		uri, bucket, key string
	}{
		{"s3://mybucket/a/b/c", "mybucket", "a/b/c"},
		{"s3://mybucket", "mybucket", ""},
		{"s3://mybucket/", "mybucket", ""},
		{"s3a://lake/raw/year=2018/month=11", "lake", "raw/year=2018/month=11"},
		{"/local/path", "", "local/path"},
		{"relative/path", "", "relative/path"},
		{"s3://lake/bad%zz", "lake", "bad%zz"},
		{"s3://bucket/raw/t/name=a%2Fb/f.json", "bucket", "raw/t/name=a%2Fb/f.json"},
		{"s3://bucket/a%20b", "bucket", "a%20b"},
		{"s3://bucket/a/b?versionId=3", "bucket", "a/b"},
		{"s3://bucket/a/b#frag", "bucket", "a/b"},
		{"s3://bucket?x=1", "bucket", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key := ParsePath(tt.uri)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestURI(t *testing.T) {
	assert.Equal(t, "s3://lake/a/b", URI("lake", "a/b"))
	assert.Equal(t, "s3://lake/a/b", URI("lake", "/a/b"))
	assert.Equal(t, "a/b", URI("", "a/b"))
}
