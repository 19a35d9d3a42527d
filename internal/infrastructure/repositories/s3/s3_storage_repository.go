package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
	"github.com/rios0rios0/gitvault/internal/domain/repositories"
)

// deleteBatchSize is the S3 DeleteObjects limit per request.
const deleteBatchSize = 1000

// contentHashMetadataKey is the user metadata key carrying the directory
// digest of an uploaded archive.
const contentHashMetadataKey = "content-hash"

// S3StorageRepository implements object storage against any S3-compatible
// endpoint (AWS, MinIO, Ceph RGW, Backblaze B2).
type S3StorageRepository struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// NewS3StorageRepository builds a client from the storage settings. The
// signature mode matters for non-AWS endpoints: some stores reject the
// streaming chunked signature, so "unsigned" or "full" can be selected.
func NewS3StorageRepository(settings entities.StorageSettings) *S3StorageRepository {
	checksumMode := aws.RequestChecksumCalculationWhenRequired
	if settings.AlwaysCalculateContentMD5 {
		checksumMode = aws.RequestChecksumCalculationWhenSupported
	}

	config := aws.Config{
		Region: settings.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID, settings.SecretAccessKey, "",
		),
		RequestChecksumCalculation: checksumMode,
	}

	client := s3.NewFromConfig(config, func(options *s3.Options) {
		options.BaseEndpoint = aws.String(settings.Endpoint)
		options.UsePathStyle = settings.ForcePathStyle

		switch settings.PayloadSignatureMode {
		case entities.PayloadSignatureUnsigned:
			options.APIOptions = append(
				options.APIOptions,
				v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware,
			)
		case entities.PayloadSignatureStreaming:
			options.APIOptions = append(
				options.APIOptions,
				v4.UseDynamicPayloadSigningMiddleware,
			)
		case entities.PayloadSignatureFull:
			// the default SDK behavior signs the full payload
		}
	})

	return &S3StorageRepository{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   settings.Bucket,
	}
}

func (it *S3StorageRepository) GetTextIfExists(
	ctx context.Context,
	key string,
) (string, bool, error) {
	output, err := it.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(it.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read object %q: %w", key, err)
	}
	return string(data), true, nil
}

func (it *S3StorageRepository) UploadText(ctx context.Context, key, content string) error {
	_, err := it.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(it.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %q: %w", key, err)
	}
	return nil
}

func (it *S3StorageRepository) UploadDirectoryAsTarGz(
	ctx context.Context,
	localPath, key string,
) error {
	contentHash, err := hashDirectory(localPath)
	if err != nil {
		return err
	}

	remoteHash, found, err := it.remoteContentHash(ctx, key)
	if err != nil {
		return err
	}
	if found && remoteHash == contentHash {
		logger.Debugf("Object %q already holds content hash %s, skipping upload", key, contentHash)
		return nil
	}

	pipeReader, pipeWriter := io.Pipe()
	go func() {
		pipeWriter.CloseWithError(writeDirectoryTarGz(pipeWriter, localPath))
	}()

	_, err = it.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(it.bucket),
		Key:         aws.String(key),
		Body:        pipeReader,
		ContentType: aws.String("application/gzip"),
		Metadata:    map[string]string{contentHashMetadataKey: contentHash},
	})
	if err != nil {
		pipeReader.CloseWithError(err)
		return fmt.Errorf("failed to upload archive %q: %w", key, err)
	}
	return nil
}

func (it *S3StorageRepository) DeleteObjects(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))

		identifiers := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
		}

		output, err := it.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(it.bucket),
			Delete: &types.Delete{Objects: identifiers, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if len(output.Errors) > 0 {
			first := output.Errors[0]
			return fmt.Errorf(
				"failed to delete %d object(s), first: %s (%s)",
				len(output.Errors), aws.ToString(first.Key), aws.ToString(first.Message),
			)
		}
	}
	return nil
}

func (it *S3StorageRepository) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := it.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return it.DeleteObjects(ctx, keys)
}

func (it *S3StorageRepository) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(it.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(it.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		for _, object := range page.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}

	return keys, nil
}

// remoteContentHash reads the content hash metadata of an existing object.
func (it *S3StorageRepository) remoteContentHash(
	ctx context.Context,
	key string,
) (string, bool, error) {
	output, err := it.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(it.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to head object %q: %w", key, err)
	}
	return output.Metadata[contentHashMetadataKey], true, nil
}

// isNotFound recognizes both GetObject's NoSuchKey and HeadObject's bare 404.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

var _ repositories.StorageRepository = (*S3StorageRepository)(nil)
