package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

const DefaultObjectName = "tasks.json"

type ObjectOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

// ObjectStorage keeps the board as a single object in an S3-compatible bucket.
type ObjectStorage struct {
	client *minio.Client
	bucket string
	object string
}

func NewObjectStorage(ctx context.Context, opts ObjectOptions) (*ObjectStorage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
	}

	object := opts.Object
	if object == "" {
		object = DefaultObjectName
	}
	return &ObjectStorage{client: client, bucket: opts.Bucket, object: object}, nil
}

func (o *ObjectStorage) Load(ctx context.Context) ([]byte, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, o.classify(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, o.classify(err)
	}
	return data, nil
}

func (o *ObjectStorage) Save(ctx context.Context, b types.Board) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	_, err = o.client.PutObject(ctx, o.bucket, o.object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", o.bucket, o.object, err)
	}
	return nil
}

func (o *ObjectStorage) classify(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("get %s/%s: %w", o.bucket, o.object, err)
}

func (o *ObjectStorage) Close() error { return nil }
