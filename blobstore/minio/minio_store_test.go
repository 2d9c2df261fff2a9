package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stackrec/blobstore"
)

type MockMinioClient struct {
	mock.Mock
}

func (m *MockMinioClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinioClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	args := m.Called(ctx, bucketName, objectName)
	if obj := args.Get(0); obj != nil {
		return obj.(*minio.Object), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStore_Open(t *testing.T) {
	mockClient := new(MockMinioClient)
	store := NewStore(mockClient, "test-bucket", "models")

	t.Run("NoSuchKey", func(t *testing.T) {
		mockClient.On("StatObject", mock.Anything, "test-bucket", "models/maven/user-matrix.srm").
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}).Once()

		_, err := store.Open(context.Background(), "maven/user-matrix.srm")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockClient.On("StatObject", mock.Anything, "test-bucket", "models/maven/item-matrix.srm").
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NotFound"}).Once()

		_, err := store.Open(context.Background(), "maven/item-matrix.srm")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("OtherErrorPassesThrough", func(t *testing.T) {
		mockClient.On("StatObject", mock.Anything, "test-bucket", "models/maven/item-matrix.srm").
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "AccessDenied"}).Once()

		_, err := store.Open(context.Background(), "maven/item-matrix.srm")
		assert.NotErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient.On("StatObject", mock.Anything, "test-bucket", "models/maven/package-id-dict.json").
			Return(minio.ObjectInfo{Size: 42}, nil).Once()
		mockClient.On("GetObject", mock.Anything, "test-bucket", "models/maven/package-id-dict.json").
			Return(&minio.Object{}, nil).Once()

		blob, err := store.Open(context.Background(), "maven/package-id-dict.json")
		require.NoError(t, err)
		assert.Equal(t, int64(42), blob.Size())
	})

	mockClient.AssertExpectations(t)
}
