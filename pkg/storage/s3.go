package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const (
	// FolderCertificates is the S3 prefix for rendered certificates.
	FolderCertificates = "certificates"

	ContentTypePDF = "application/pdf"

	uriScheme         = "s3://"
	uploadPartSize    = 5 * 1024 * 1024
	defaultPresignTTL = 15 * time.Minute
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	CertificatesBucket   string
	PresignExpireMinutes int
}

// S3 stores rendered artifacts privately and hands out presigned download links.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client. Static keys come from cfg, then AWS_ACCESS_KEY_ID /
// AWS_SECRET_ACCESS_KEY; without either the default credential chain is used.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions(cfg, logger)...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) { u.PartSize = uploadPartSize }),
		presign:  s3.NewPresignClient(client),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func loadOptions(cfg S3Config, logger *zap.Logger) []func(*config.LoadOptions) error {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}

	key, secret := cfg.AccessKeyID, cfg.SecretAccessKey
	if key == "" || secret == "" {
		key, secret = os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if key == "" || secret == "" {
		logger.Debug("s3 using default credential chain", zap.String("region", cfg.Region))
		return opts
	}
	logger.Debug("s3 using static credentials",
		zap.String("region", cfg.Region),
		zap.String("certificates_bucket", cfg.CertificatesBucket))
	return append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
}

// CertificateKey returns the object key certificates/{job_id}/{filename}.
func CertificateKey(jobID, filename string) string {
	return path.Join(FolderCertificates, jobID, path.Base(filename))
}

// URI formats bucket and key as an s3:// target.
func URI(bucket, key string) string {
	return uriScheme + bucket + "/" + strings.TrimPrefix(key, "/")
}

// IsURI reports whether target names an S3 object.
func IsURI(target string) bool {
	return strings.HasPrefix(target, uriScheme)
}

// ParseURI splits s3://bucket/key. Both parts must be non-empty.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("%q is not an s3:// uri", uri)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, uriScheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 target %q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// CertificatesBucket returns the bucket certificates are written to.
func (s *S3) CertificatesBucket() string { return s.cfg.CertificatesBucket }

// PresignExpire returns how long presigned links stay valid.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return defaultPresignTTL
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// GeneratePresignedDownloadURL signs a GET for key. The object need not exist yet, so the link
// can be handed out while the worker is still rendering.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// Upload writes body to bucket/key, overwriting any existing object, and returns its s3:// uri.
// Objects are private and encrypted at rest; downloads are named after the key's base name.
func (s *S3) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String(contentType),
		ContentDisposition:   aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)})),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", URI(bucket, key), err)
	}
	return URI(bucket, key), nil
}
