package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

const emptyAWSSessionToken = ""

// R2 talks to Cloudflare R2 through its S3-compatible API.
type R2 struct {
	svc           *s3.S3
	bucket        string
	endpoint      string
	publicBaseURL string
	presignTTL    time.Duration
	logg          *logger.Logger
}

// NewR2 builds the R2 backend. Credentials, bucket, and endpoint are
// required; missing values fail here, never on first use.
func NewR2(cfg config.R2Config, presignTTL time.Duration, logg *logger.Logger) (*R2, error) {
	if !cfg.Configured() {
		return nil, errors.New("r2 credentials, bucket, and endpoint are required")
	}
	if presignTTL <= 0 {
		return nil, errors.New("presign ttl must be positive")
	}

	endpoint := cfg.ResolvedEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("creating r2 session: %w", err)
	}

	return &R2{
		svc:           s3.New(sess),
		bucket:        cfg.Bucket,
		endpoint:      endpoint,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignTTL:    presignTTL,
		logg:          logg,
	}, nil
}

func (r *R2) Name() string {
	return ProviderR2
}

func (r *R2) Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error) {
	_, err := r.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(filename),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, &UploadError{Provider: ProviderR2, Err: err}
	}

	return &UploadResult{
		Provider:  ProviderR2,
		Filename:  filename,
		URL:       r.FileURL(filename),
		SizeBytes: int64(len(data)),
	}, nil
}

func (r *R2) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	out, err := r.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return nil, fmt.Errorf("r2 get object %q: %w", filename, err)
	}
	return out.Body, nil
}

func (r *R2) Delete(ctx context.Context, filename string) bool {
	_, err := r.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		if r.logg != nil {
			ctx = r.logg.WithProvider(ctx, ProviderR2)
			r.logg.Warn(r.logg.WithField(ctx, "filename", filename), "object delete failed")
		}
		return false
	}
	return true
}

// FileURL is deterministic: the public CDN base when one is configured,
// otherwise the path-style endpoint URL.
func (r *R2) FileURL(filename string) string {
	if r.publicBaseURL != "" {
		return r.publicBaseURL + "/" + filename
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(r.endpoint, "/"), r.bucket, filename)
}

func (r *R2) Exists(ctx context.Context, filename string) (bool, error) {
	_, err := r.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		if isNotFoundAWS(err) {
			return false, nil
		}
		return false, fmt.Errorf("r2 head object %q: %w", filename, err)
	}
	return true, nil
}

func (r *R2) PresignUpload(ctx context.Context, filename string, opts PresignOptions) (*PresignedURL, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = r.presignTTL
	}

	req, _ := r.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(filename),
		ContentType: aws.String(opts.ContentType),
	})
	req.SetContext(ctx)

	url, err := req.Presign(ttl)
	if err != nil {
		return nil, fmt.Errorf("presigning r2 upload: %w", err)
	}

	return &PresignedURL{
		Provider:  ProviderR2,
		URL:       url,
		Method:    http.MethodPut,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (r *R2) Metadata(ctx context.Context, filename string) (*ObjectInfo, error) {
	out, err := r.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return nil, fmt.Errorf("r2 head object %q: %w", filename, err)
	}

	return &ObjectInfo{
		Filename:     filename,
		SizeBytes:    aws.Int64Value(out.ContentLength),
		ContentType:  aws.StringValue(out.ContentType),
		LastModified: aws.TimeValue(out.LastModified),
	}, nil
}

func (r *R2) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	out, err := r.svc.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(int64(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("r2 list objects: %w", err)
	}

	infos := make([]ObjectInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		infos = append(infos, ObjectInfo{
			Filename:     aws.StringValue(obj.Key),
			SizeBytes:    aws.Int64Value(obj.Size),
			LastModified: aws.TimeValue(obj.LastModified),
		})
	}
	return infos, nil
}

func isNotFoundAWS(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode() == http.StatusNotFound
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return awsErr.Code() == s3.ErrCodeNoSuchKey || awsErr.Code() == "NotFound"
	}
	return false
}
