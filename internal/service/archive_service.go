package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// maxArchiveBytes caps how much of a media URL gets mirrored.
const maxArchiveBytes = 25 * 1024 * 1024

type ArchiveService struct {
	config cfg.Config
	pr     repository.TrackedPostRepository
	ar     repository.ArchiveRepository
	client *http.Client
}

func NewArchiveService(cfg cfg.Config, pr repository.TrackedPostRepository, ar repository.ArchiveRepository) *ArchiveService {
	return &ArchiveService{
		config: cfg,
		pr:     pr,
		ar:     ar,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *ArchiveService) r2Client() (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}

// ArchivePostMedia mirrors each of the post's media URLs into R2 so
// infringement evidence survives platform-side deletion. Best effort:
// a failed URL is logged and skipped, already-archived URLs are not
// fetched again.
func (s *ArchiveService) ArchivePostMedia(ctx context.Context, trackedPostID int64) error {
	post, err := s.pr.GetByID(ctx, trackedPostID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("tracked post %d: %w", trackedPostID, ErrNotFound)
	}

	for _, mediaURL := range post.MediaURLs {
		exists, err := s.ar.ExistsForSourceURL(ctx, post.ID, mediaURL)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := s.archiveURL(ctx, post.ID, mediaURL); err != nil {
			slog.Info(fmt.Sprintf("archiving %s for post %d: %v", mediaURL, post.ID, err))
		}
	}

	return nil
}

func (s *ArchiveService) archiveURL(ctx context.Context, postID int64, mediaURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return err
	}
	if len(body) > maxArchiveBytes {
		return fmt.Errorf("media exceeds %d bytes", maxArchiveBytes)
	}

	fileType, err := filetype.Match(body)
	if err != nil || fileType == types.Unknown {
		return fmt.Errorf("unsupported media type: %w", err)
	}

	key, err := gonanoid.New()
	if err != nil {
		return err
	}

	if err := s.uploadToR2(ctx, key, body, fileType.MIME.Value); err != nil {
		return err
	}

	_, err = s.ar.Create(ctx, &models.MediaArchive{
		TrackedPostID: postID,
		SourceURL:     mediaURL,
		ObjectKey:     key,
		ArchiveURL:    fmt.Sprintf("%s/%s", s.config.R2.PublicURL, key),
		ContentType:   fileType.MIME.Value,
		ByteSize:      int64(len(body)),
	})
	return err
}

func (s *ArchiveService) uploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := s.r2Client()
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	_, err = client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
