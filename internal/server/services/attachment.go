package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	sc "github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultContentType = "application/octet-stream"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AttachmentService stores attachment metadata in Postgres and hands out
// presigned S3 URLs for the file bodies.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	membership  *Membership
	config      *sc.Config
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, membership: NewMembership(m), config: cfg}
}

func storageKey(projectID, issueID string) string {
	return fmt.Sprintf("projects/%s/issues/%s/%s", projectID, issueID, uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// RequestUpload records a new attachment of the issue and returns a
// presigned PUT URL for its body.
func (s *AttachmentService) RequestUpload(ctx context.Context, user models.User, issueID string, in models.AttachmentInput) (*models.AttachmentUpload, error) {
	fileName := path.Base(strings.TrimSpace(in.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, common.NewError(common.ErrorValidation, "File name is required")
	}
	if in.Size < 0 {
		return nil, common.NewError(common.ErrorValidation, "Size must not be negative")
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	issue, err := loadVisibleIssue(ctx, s.repomanager, s.membership, s.db, user, issueID)
	if err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := storageKey(issue.ProjectID, issue.ID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(s.config.AttachmentURLValidity))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	a, err := s.repomanager.Attachments(s.db).Create(ctx, &models.Attachment{
		IssueID:     issue.ID,
		ProjectID:   issue.ProjectID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        in.Size,
		StorageKey:  key,
		UploadedBy:  user.ID,
	})
	if err != nil {
		return nil, err
	}
	return &models.AttachmentUpload{Attachment: *a, UploadURL: req.URL}, nil
}

// List returns the issue's attachments with presigned download URLs.
func (s *AttachmentService) List(ctx context.Context, user models.User, issueID string) ([]models.Attachment, error) {
	if _, err := loadVisibleIssue(ctx, s.repomanager, s.membership, s.db, user, issueID); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Attachments(s.db).ListByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	for i := range list {
		key := list[i].StorageKey
		req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(s.config.AttachmentURLValidity))
		if err != nil {
			return nil, fmt.Errorf("error presigning download: %w", err)
		}
		list[i].URL = req.URL
	}
	return list, nil
}
