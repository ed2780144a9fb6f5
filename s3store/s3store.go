// Package s3store backs workstate with Amazon S3 or any S3-compatible
// endpoint (MinIO and friends).
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sagikazarmark/workstate"
)

// s3iface is the minimal subset of s3 client methods we use; allows test fakes.
type s3iface interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type uploaderIface interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// newClient constructs the s3 client; overridden in tests.
var newClient = func(ctx context.Context, opts workstate.Options) (s3iface, uploaderIface, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := optionOrEnv(opts, "region", "AWS_REGION"); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := optionOrEnv(opts, "endpoint", "AWS_ENDPOINT_URL_S3"); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		if strings.EqualFold(optionOrEnv(opts, "force_path_style", "AWS_S3_FORCE_PATH_STYLE"), "true") {
			o.UsePathStyle = true
		}
	})
	return client, manager.NewUploader(client), nil
}

func optionOrEnv(opts workstate.Options, key, env string) string {
	if v, ok := opts[key]; ok && v != "" {
		return v
	}
	return os.Getenv(env)
}

// Store implements workstate.Store over a single bucket.
type Store struct {
	bucket   string
	client   s3iface
	uploader uploaderIface
}

// Open resolves an s3:// URL to a bucket-bound store. Register it on a
// factory with f.RegisterScheme("s3", s3store.Open).
func Open(ctx context.Context, u *workstate.StoreURL, opts workstate.Options) (workstate.Store, error) {
	client, uploader, err := newClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Store{bucket: u.Authority, client: client, uploader: uploader}, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, 0, fmt.Errorf("%w: s3://%s/%s", workstate.ErrNotFound, s.bucket, key)
		}
		return nil, 0, fmt.Errorf("%w: get s3://%s/%s: %w", workstate.ErrIO, s.bucket, key, err)
	}
	size := int64(0)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %w", workstate.ErrIO, s.bucket, key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	// The request prefix only narrows the scan; ListObjectsV2 matches on raw
	// characters, so "runs/1" would also surface "runs/10/...". Keep the
	// segment boundary the other backends enforce.
	boundary := strings.TrimSuffix(prefix, "/") + "/"
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list s3://%s/%s: %w", workstate.ErrIO, s.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasPrefix(key, boundary) {
				keys = append(keys, key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

func (s *Store) Close() error { return nil }
