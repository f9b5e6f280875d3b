package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Config contains minimal configuration for creating a media store.
// Values are optional and will fall back to the standard AWS config/credential chain.
type Config struct {
	// Bucket is the default bucket for media objects.
	Bucket string
	// Region to use for requests, e.g. "us-east-1". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile. If empty, default chain applies.
	Profile string
	// Endpoint overrides the service endpoint (for S3-compatible providers).
	Endpoint string
	// UsePathStyle forces path-style addressing (useful for some S3-compatible providers).
	UsePathStyle bool
	// PublicBaseURL, when set, is used to build public URLs for public objects.
	PublicBaseURL string
}

// PresignedURL is a signed request the caller can perform directly against the bucket.
type PresignedURL struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Expires time.Time         `json:"expires_at"`
}

// Store wraps the AWS SDK for Go v2 S3 client with a narrow interface we can mock.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     Config
}

// New creates a media store using the default AWS configuration chain,
// with optional overrides from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: c, presign: s3.NewPresignClient(c), cfg: cfg}, nil
}

// Bucket returns the default bucket name.
func (s *Store) Bucket() string { return s.cfg.Bucket }

// Put uploads an object to the default bucket under key.
// If contentType is non-empty, it is set on the object.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string, public bool) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if public {
		in.ACL = s3types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, in)
	return err
}

// Get fetches an object and returns its streaming body. Caller must Close it.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Head retrieves the object's metadata without returning the body.
func (s *Store) Head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
}

// Delete removes the object at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists returns true if the object exists (HTTP 200 from HeadObject); false if 404/NotFound.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Head(ctx, key)
	if err == nil {
		return true, nil
	}

	// Check for HTTP 404 response error
	var respErr *http.ResponseError
	if errors.As(err, &respErr) {
		if respErr.HTTPStatusCode() == 404 {
			return false, nil
		}
	}

	// Check for API error code NotFound
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
	}

	return false, err
}

// List lists objects with the given prefix. Use continuationToken for pagination.
func (s *Store) List(ctx context.Context, prefix string, maxKeys int32, continuationToken *string) (*s3.ListObjectsV2Output, error) {
	return s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:            aws.String(s.cfg.Bucket),
		Prefix:            aws.String(prefix),
		MaxKeys:           aws.Int32(maxKeys),
		ContinuationToken: continuationToken,
	})
}

// PresignUpload returns a signed PUT request for key, valid for expiry.
func (s *Store) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (*PresignedURL, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := s.presign.PresignPutObject(ctx, in, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return nil, err
	}
	return presigned(req, expiry), nil
}

// PresignDownload returns a signed GET request for key, valid for expiry.
func (s *Store) PresignDownload(ctx context.Context, key string, expiry time.Duration) (*PresignedURL, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return nil, err
	}
	return presigned(req, expiry), nil
}

// PublicURL builds a stable URL for a public object, preferring the configured base.
func (s *Store) PublicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return s.cfg.Endpoint + "/" + s.cfg.Bucket + "/" + key
	}
	return "https://" + s.cfg.Bucket + ".s3.amazonaws.com/" + key
}

// Client exposes the underlying SDK client for advanced callers (avoid when possible).
func (s *Store) Client() *s3.Client { return s.client }

func presigned(req *v4.PresignedHTTPRequest, expiry time.Duration) *PresignedURL {
	headers := make(map[string]string, len(req.SignedHeader))
	for k, vs := range req.SignedHeader {
		if len(vs) > 0 {
			headers[k] = vs[0]
		}
	}
	return &PresignedURL{
		URL:     req.URL,
		Method:  req.Method,
		Headers: headers,
		Expires: time.Now().Add(expiry).UTC(),
	}
}
