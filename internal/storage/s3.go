package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"evidencechain/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Storage keeps evidence objects in an S3 bucket. Object keys are the
// storage paths recorded in the ledger.
type S3Storage struct {
	client     *s3.Client
	bucketName string
}

func NewS3Storage(client *s3.Client, bucketName string) *S3Storage {
	return &S3Storage{
		client:     client,
		bucketName: bucketName,
	}
}

func (s *S3Storage) Download(ctx context.Context, path string) ([]byte, error) {

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, types.NewError(types.ErrorKindBlobNotFound, fmt.Sprintf("object %s not found", path), err)
		}
		return nil, types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("download %s", path), err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("read %s", path), err)
	}

	return content, nil
}

func (s *S3Storage) UploadFile(ctx context.Context, path string, file io.Reader, contentType string) (string, error) {

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(path),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("upload %s", path), err)
	}

	return path, nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
