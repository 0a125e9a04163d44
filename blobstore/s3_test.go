package blobstore

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu           sync.Mutex
	pageSize     int
	objects      map[string][]byte
	listCalls    int
	deleteCalls  []int
	tokensServed []string
}

func newFakeS3(pageSize int) *fakeS3 {
	return &fakeS3{pageSize: pageSize, objects: map[string][]byte{}}
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var keys []string
	for k := range f.objects {
		bucket, key, _ := strings.Cut(k, "/")
		if bucket == aws.ToString(in.Bucket) && strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	start := 0
	if in.ContinuationToken != nil {
		f.tokensServed = append(f.tokensServed, *in.ContinuationToken)
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+f.pageSize, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.objects[aws.ToString(in.Bucket)+"/"+k]))),
			LastModified: aws.Time(time.Unix(0, 0)),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, len(in.Delete.Objects))
	for _, o := range in.Delete.Objects {
		delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(o.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestS3StoreListFollowsContinuationTokens(t *testing.T) {
	fake := newFakeS3(2)
	for i := range 5 {
		fake.objects[fmt.Sprintf("lake/raw/orders/day=0%d/part.avro", i)] = []byte("x")
	}
	fake.objects["lake/raw/other/part.avro"] = []byte("x")
	store := NewS3Store(fake)

	objects, err := store.List(context.Background(), "lake", "raw/orders/")
	require.NoError(t, err)
	require.Len(t, objects, 5)
	assert.Equal(t, "raw/orders/day=00/part.avro", objects[0].Key)
	assert.Equal(t, int64(1), objects[0].Size)
	assert.Equal(t, 3, fake.listCalls)
	assert.Equal(t, []string{"2", "4"}, fake.tokensServed)
}

func TestS3StoreWalkStops(t *testing.T) {
	fake := newFakeS3(2)
	for i := range 6 {
		fake.objects[fmt.Sprintf("lake/k%d", i)] = nil
	}
	stop := fmt.Errorf("stop")
	seen := 0
	err := NewS3Store(fake).Walk(context.Background(), "lake", "", func(Object) error {
		seen++
		if seen == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, seen)
	assert.Equal(t, 2, fake.listCalls)
}

func TestS3StoreGetPutExists(t *testing.T) {
	ctx := context.Background()
	store := NewS3Store(newFakeS3(10))

	ok, err := store.Exists(ctx, "lake", "a/b.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "lake", "a/b.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, store.Put(ctx, "lake", "a/b.json", []byte(`{"a":1}`)))
	ok, err = store.Exists(ctx, "lake", "a/b.json")
	require.NoError(t, err)
	assert.True(t, ok)

	text, err := GetText(ctx, store, "s3://lake/a/b.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	uris, err := ListURIs(ctx, store, "s3://lake/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://lake/a/b.json"}, uris)
	assert.Equal(t, "s3://lake/a/b.json", store.ObjectURI("lake", "a/b.json"))
}

func TestS3StoreDeleteBatches(t *testing.T) {
	fake := newFakeS3(1000)
	for i := range 2500 {
		fake.objects[fmt.Sprintf("lake/tmp/%05d", i)] = nil
	}
	fake.objects["lake/keep"] = nil

	require.NoError(t, NewS3Store(fake).Delete(context.Background(), "lake", "tmp/"))
	assert.Equal(t, []int{1000, 1000, 500}, fake.deleteCalls)
	assert.Len(t, fake.objects, 1)
}
