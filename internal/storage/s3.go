package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
)

// S3Storage guarda los PDFs en un bucket S3 o compatible
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  *logrus.Logger
}

// NewS3Storage crea una nueva instancia del almacenamiento S3. Con Endpoint
// configurado usa un storage compatible (MinIO, Supabase) en modo path-style.
func NewS3Storage(cfg *config.StorageConfig, logger *logrus.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
			},
		}))
	}

	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				SigningRegion:     cfg.Region,
				HostnameImmutable: true,
			}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// SavePDF sube el PDF al bucket bajo certificados/{codigo}.pdf
func (s *S3Storage) SavePDF(ctx context.Context, codigo string, data []byte) (*SavedFile, error) {
	key := fmt.Sprintf("certificados/%s.pdf", codigo)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("error subiendo PDF a S3: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"codigo": codigo,
		"bucket": s.bucket,
		"key":    key,
	}).Info("PDF guardado en S3")

	return &SavedFile{
		Path: key,
		URL:  s.baseURL + "/" + key,
	}, nil
}

// DeletePDF elimina el objeto indicado por key o por URL pública
func (s *S3Storage) DeletePDF(ctx context.Context, pathOrURL string) (bool, error) {
	key := pathOrURL
	if strings.HasPrefix(pathOrURL, "http") {
		key = strings.TrimPrefix(strings.TrimPrefix(pathOrURL, s.baseURL), "/")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("error eliminando PDF de S3: %w", err)
	}
	return true, nil
}
