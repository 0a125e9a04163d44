package blobstore

import "strings"

// ParsePath splits an object URI into bucket and key. s3://bucket/a/b gives
// ("bucket", "a/b"). A path without a scheme has no bucket and its key is the
// path with the leading slash removed. The key is returned as written: percent
// escapes are not decoded, and a ?query or #fragment suffix is dropped.
func ParsePath(uri string) (bucket, key string) {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "", strings.TrimPrefix(uri, "/")
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, key
}

// URI joins a bucket and key back into an s3:// URI.
func URI(bucket, key string) string {
	if bucket == "" {
		return key
	}
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}
