package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// placeholderObject is created by the platform to materialise empty folders.
const placeholderObject = ".emptyFolderPlaceholder"

// ObjectAPI is the subset of *s3.Client used by Storage.
type ObjectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// StorageConfig locates a bucket on the platform's S3 compatible endpoint.
type StorageConfig struct {
	BaseURL    string
	ProjectRef string
	AnonKey    string
	Region     string
	Bucket     string
}

// Storage implements Objects on top of the S3 protocol. Requests are
// authorised as the signed-in user, so bucket policies see the user's id.
type Storage struct {
	cfg StorageConfig
}

func NewStorage(cfg StorageConfig) *Storage {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Storage{cfg: cfg}
}

func (s *Storage) objectAPI(ctx context.Context, accessToken string) (ObjectAPI, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.ProjectRef, // access key id
			s.cfg.AnonKey,    // secret
			accessToken,      // session token
		)))
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.BaseURL + "/storage/v1/s3")
		o.UsePathStyle = true
	}), nil
}

// List returns up to limit objects directly under prefix, newest keys last
// as ordered by the service.
func (s *Storage) List(ctx context.Context, accessToken, prefix string, limit int) ([]Object, error) {
	api, err := s.objectAPI(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	in := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.cfg.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	if limit > 0 {
		in.MaxKeys = aws.Int32(int32(limit))
	}

	out, err := api.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	objects := make([]Object, 0, len(out.Contents))
	for _, o := range out.Contents {
		key := aws.ToString(o.Key)
		if strings.HasSuffix(key, "/"+placeholderObject) || key == placeholderObject {
			continue
		}
		objects = append(objects, Object{
			Key:          key,
			Size:         aws.ToInt64(o.Size),
			LastModified: aws.ToTime(o.LastModified),
		})
	}
	return objects, nil
}

func (s *Storage) Put(ctx context.Context, accessToken, key string, body io.Reader, size int64, contentType string) error {
	api, err := s.objectAPI(ctx, accessToken)
	if err != nil {
		return err
	}

	_, err = api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, accessToken string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	api, err := s.objectAPI(ctx, accessToken)
	if err != nil {
		return err
	}

	ids := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		ids[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	out, err := api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.cfg.Bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("delete object %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
	}
	return nil
}

// PublicURL returns the unauthenticated download URL of key.
func (s *Storage) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.cfg.BaseURL + "/storage/v1/object/public/" + url.PathEscape(s.cfg.Bucket) + "/" + strings.Join(parts, "/")
}
