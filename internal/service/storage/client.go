package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 10 * time.Minute
)

// Client предоставляет методы для работы с S3-совместимым хранилищем
type Client struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewClient создает новый экземпляр клиента S3
func NewClient(conf *Config) (*Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: accessKeyID, secretAccessKey, and bucket are required")
	}

	// Создаем конфигурацию AWS
	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	client := s3.New(s3.Options{
		BaseEndpoint:     aws.String(conf.Endpoint),
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	})

	s3Client := &Client{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  conf.Bucket,
	}

	// Проверяем подключение к бакету
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := s3Client.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return s3Client, nil
}

// Store загружает файл в S3
func (h *Client) Store(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return nil
}

// Read получает объект из S3 целиком
func (h *Client) Read(ctx context.Context, key string) ([]byte, error) {
	result, err := h.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return data, nil
}

// Delete удаляет объект из S3
func (h *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Проверяем существование объекта перед удалением
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})

	// Если объект не существует, считаем операцию успешной
	var nf *types.NotFound
	if err != nil && errors.As(err, &nf) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check object existence: %w", err)
	}

	_, err = h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	return nil
}

// Exists проверяет наличие объекта в S3
func (h *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// SignedURL выдает подписанную ссылку на объект.
// Срок действия определяется политикой: каноническая ссылка живет год,
// ссылка для просмотра — час.
func (h *Client) SignedURL(ctx context.Context, key string, policy URLPolicy) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	req, err := h.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(policy.TTL()))
	if err != nil {
		return "", fmt.Errorf("failed to presign object url: %w", err)
	}

	return req.URL, nil
}
