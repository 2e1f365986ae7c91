package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
)

// DriveService publishes finished catalogs to an S3-compatible store. It is
// invoked only after a job reaches complete and is independent of the core
// pipeline.
type DriveService struct {
	client *s3.Client
	cfg    *config.Config
}

func NewDriveService(cfg *config.Config) (*DriveService, error) {
	client, err := buildDriveClient(cfg)
	if err != nil {
		return nil, err
	}
	return &DriveService{client: client, cfg: cfg}, nil
}

func buildDriveClient(cfg *config.Config) (*s3.Client, error) {
	endpoint := cfg.DriveS3Endpoint
	resolver := awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
		func(service, rgn string, options ...interface{}) (aws.Endpoint, error) {
			if endpoint != "" {
				return aws.Endpoint{URL: endpoint, SigningRegion: cfg.DriveS3Region}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}))
	awscfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.DriveS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.DriveS3AccessKeyID, cfg.DriveS3SecretAccessKey, "")),
		resolver,
		awsconfig.WithLogger(logging.NewStandardLogger(nil)),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.DriveS3UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	})
	return client, nil
}

// UploadCatalog pushes a job's PDF to the drive bucket and returns the
// remote object key and a shareable URL.
func (s *DriveService) UploadCatalog(ctx context.Context, job *models.Job) (string, string, error) {
	if job.PDFPath == "" {
		return "", "", models.NewValidationError("job has no assembled catalog to upload")
	}
	f, err := os.Open(job.PDFPath)
	if err != nil {
		return "", "", models.NewNotFoundError(fmt.Sprintf("catalog file missing: %s", job.PDFPath))
	}
	defer f.Close()

	key := fmt.Sprintf("catalogs/%s/%s", job.ID, filepath.Base(job.PDFPath))
	uploader := manager.NewUploader(s.client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &s.cfg.DriveBucket,
		Key:         &key,
		Body:        f,
		ContentType: aws.String("application/pdf"),
		ACL:         s3types.ObjectCannedACLPrivate,
	}, func(u *manager.Uploader) { u.PartSize = 10 * 1024 * 1024 })
	if err != nil {
		return "", "", models.NewUpstreamError(fmt.Sprintf("drive upload failed: %v", err))
	}

	shareURL, err := s.shareURL(ctx, key)
	if err != nil {
		return "", "", err
	}
	log.Printf("Catalog for job %s uploaded to drive: %s", job.ID, key)
	return key, shareURL, nil
}

// shareURL prefers the configured public base URL and falls back to a
// presigned GET.
func (s *DriveService) shareURL(ctx context.Context, key string) (string, error) {
	if s.cfg.DrivePublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.DrivePublicURL, "/"), url.PathEscape(key)), nil
	}
	presigner := s3.NewPresignClient(s.client)
	out, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.cfg.DriveBucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.cfg.DrivePresignTTL))
	if err != nil {
		return "", models.NewUpstreamError(fmt.Sprintf("presign failed: %v", err))
	}
	return out.URL, nil
}
