package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drusellers/tantivy/directory"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.HeadBucketOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.HeadObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.UploadPartOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.CreateMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.CompleteMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.AbortMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func getBody(data string) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}
}

func newMockDirectory(t *testing.T, m *mockClient) *Directory {
	t.Helper()
	m.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil).Once()
	d, err := Open(context.Background(), m, "test-bucket", func(o *Options) {
		o.Prefix = "idx"
		o.CacheDir = t.TempDir()
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpenValidatesBucket(t *testing.T) {
	m := new(mockClient)
	m.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

	_, err := Open(context.Background(), m, "missing-bucket")
	assert.Error(t, err)
	m.AssertExpectations(t)
}

func TestOpenReadFetchesOnce(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == "test-bucket" && *in.Key == "idx/seg.term"
	})).Return(getBody("term dictionary bytes"), nil).Once()

	src, err := d.OpenRead("seg.term")
	require.NoError(t, err)
	assert.Equal(t, "term dictionary bytes", string(src.Bytes()))
	require.NoError(t, src.Close())

	// Second read is served from the local cache, no remote call.
	src, err = d.OpenRead("seg.term")
	require.NoError(t, err)
	assert.Equal(t, "term dictionary bytes", string(src.Bytes()))
	require.NoError(t, src.Close())

	m.AssertExpectations(t)
}

func TestAtomicReadMissing(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()

	_, err := d.AtomicRead("meta.json")
	assert.ErrorIs(t, err, directory.ErrFileDoesNotExist)
	m.AssertExpectations(t)
}

func TestAtomicReadAlwaysRemote(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("GetObject", mock.Anything, mock.Anything).Return(getBody("v1"), nil).Once()
	m.On("GetObject", mock.Anything, mock.Anything).Return(getBody("v2"), nil).Once()

	data, err := d.AtomicRead("meta.json")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	data, err = d.AtomicRead("meta.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
	m.AssertExpectations(t)
}

func TestAtomicWrite(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	var uploaded []byte
	m.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Key == "idx/meta.json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		uploaded, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, d.AtomicWrite("meta.json", []byte(`{"version":1}`)))
	assert.Equal(t, `{"version":1}`, string(uploaded))
	m.AssertExpectations(t)
}

func TestExists(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return *in.Key == "idx/present"
	})).Return(&s3.HeadObjectOutput{}, nil).Once()
	m.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return *in.Key == "idx/absent"
	})).Return(nil, &types.NotFound{}).Once()

	ok, err := d.Exists("present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists("absent")
	require.NoError(t, err)
	assert.False(t, ok)
	m.AssertExpectations(t)
}

func TestOpenWriteUploadsOnClose(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

	var uploaded []byte
	m.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Key == "idx/seg.idx"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		uploaded, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	w, err := d.OpenWrite("seg.idx")
	require.NoError(t, err)
	_, err = w.Write([]byte("posting "))
	require.NoError(t, err)
	_, err = w.Write([]byte("lists"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "posting lists", string(uploaded))

	// The finished file also serves reads from the local cache without
	// a download.
	src, err := d.OpenRead("seg.idx")
	require.NoError(t, err)
	assert.Equal(t, "posting lists", string(src.Bytes()))
	require.NoError(t, src.Close())

	m.AssertExpectations(t)
}

func TestOpenWriteExistingFails(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("HeadObject", mock.Anything, mock.Anything).Return(&s3.HeadObjectOutput{}, nil).Once()

	_, err := d.OpenWrite("seg.idx")
	assert.ErrorIs(t, err, directory.ErrFileAlreadyExists)
	m.AssertExpectations(t)
}

func TestDeleteRemovesLocalCopy(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	m.On("GetObject", mock.Anything, mock.Anything).Return(getBody("tombstones"), nil).Once()
	m.On("GetObject", mock.Anything, mock.Anything).Return(getBody("tombstones"), nil).Once()
	m.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "idx/seg.del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	src, err := d.OpenRead("seg.del")
	require.NoError(t, err)
	require.NoError(t, src.Close())

	require.NoError(t, d.Delete("seg.del"))

	// The cached copy is gone, so the next read goes remote again.
	src, err = d.OpenRead("seg.del")
	require.NoError(t, err)
	require.NoError(t, src.Close())
	m.AssertExpectations(t)
}

func TestPrefetchWarmsCache(t *testing.T) {
	m := new(mockClient)
	d := newMockDirectory(t, m)

	for _, name := range []string{"a.term", "b.term"} {
		key := "idx/" + name
		m.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
			return *in.Key == key
		})).Return(getBody("data of "+name), nil).Once()
	}

	require.NoError(t, d.Prefetch(context.Background(), "a.term", "b.term"))

	// Both files now read locally.
	for _, name := range []string{"a.term", "b.term"} {
		src, err := d.OpenRead(name)
		require.NoError(t, err)
		assert.Equal(t, "data of "+name, string(src.Bytes()))
		require.NoError(t, src.Close())
	}
	m.AssertExpectations(t)
}

func TestIntegration_S3Directory(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg)

	prefix := fmt.Sprintf("test-tantivy-%d", time.Now().UnixNano())
	d, err := Open(ctx, client, bucket, func(o *Options) {
		o.Prefix = prefix
	})
	require.NoError(t, err)
	defer d.Close()

	t.Run("WriteAndRead", func(t *testing.T) {
		w, err := d.OpenWrite("seg.term")
		require.NoError(t, err)
		_, err = w.Write([]byte("dictionary"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		ok, err := d.Exists("seg.term")
		require.NoError(t, err)
		assert.True(t, ok)

		src, err := d.OpenRead("seg.term")
		require.NoError(t, err)
		assert.Equal(t, "dictionary", string(src.Bytes()))
		require.NoError(t, src.Close())

		require.NoError(t, d.Delete("seg.term"))
	})

	t.Run("AtomicRoundTrip", func(t *testing.T) {
		require.NoError(t, d.AtomicWrite("meta.json", []byte(`{"v":1}`)))
		data, err := d.AtomicRead("meta.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v":1}`, string(data))

		require.NoError(t, d.AtomicWrite("meta.json", []byte(`{"v":2}`)))
		data, err = d.AtomicRead("meta.json")
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(data))

		require.NoError(t, d.Delete("meta.json"))
	})
}
