package s3

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	got     *s3.PutObjectInput
	deleted *s3.DeleteObjectInput
	err     error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.got = in
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = in
	return &s3.DeleteObjectOutput{}, f.err
}

func TestSave_BuildsKeyAndURL(t *testing.T) {
	fp := &fakeObjects{}
	s := newStore(fp, Config{Region: "sa-east-1", Bucket: "getapet"})

	ref, err := s.Save(context.Background(), "pets", "rex.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://getapet.s3.sa-east-1.amazonaws.com/pets/rex.png", ref)
	assert.Equal(t, "pets/rex.png", aws.ToString(fp.got.Key))
	assert.Equal(t, "getapet", aws.ToString(fp.got.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fp.got.ContentType))
}

func TestSave_CustomEndpoint(t *testing.T) {
	s := newStore(&fakeObjects{}, Config{Region: "us-east-1", Bucket: "b", Endpoint: "http://minio:9000/"})

	ref, err := s.Save(context.Background(), "users", "u.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/b/users/u.jpg", ref)
}

func TestSave_PropagatesError(t *testing.T) {
	s := newStore(&fakeObjects{err: errors.New("denied")}, Config{Region: "r", Bucket: "b"})
	_, err := s.Save(context.Background(), "pets", "a.png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestDelete_UsesKeyFromURL(t *testing.T) {
	fo := &fakeObjects{}
	s := newStore(fo, Config{Region: "sa-east-1", Bucket: "getapet"})

	ref, err := s.Save(context.Background(), "pets", "rex.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "pets", ref))
	assert.Equal(t, "pets/rex.png", aws.ToString(fo.deleted.Key))
	assert.Equal(t, "getapet", aws.ToString(fo.deleted.Bucket))

	assert.NoError(t, s.Delete(context.Background(), "pets", ""))
}
