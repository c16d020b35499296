package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3EvidenceClient collects per-bucket configuration evidence for every
// bucket in the account.
type S3EvidenceClient struct {
	client *s3.Client
}

// NewS3EvidenceClient creates a new S3 evidence client.
func NewS3EvidenceClient(cfg aws.Config) *S3EvidenceClient {
	return &S3EvidenceClient{client: s3.NewFromConfig(cfg)}
}

// BucketEvidence captures the forensically relevant configuration of a
// single bucket. API calls that fail (usually permissions) record the error
// message instead of aborting the collection.
type BucketEvidence struct {
	BucketName        string         `json:"bucket_name"`
	CreationDate      time.Time      `json:"creation_date"`
	Location          any            `json:"location"`
	ACL               any            `json:"acl"`
	PublicAccessBlock any            `json:"public_access_block"`
	Policy            any            `json:"policy"`
	Versioning        any            `json:"versioning"`
	Encryption        any            `json:"encryption"`
	Logging           any            `json:"logging"`
	Lifecycle         any            `json:"lifecycle"`
	ObjectStats       *ObjectStats   `json:"object_stats,omitempty"`
}

// ObjectStats is an optional object count and total size for a bucket.
// Enumerating large buckets is slow; callers opt in.
type ObjectStats struct {
	ObjectCount    int   `json:"object_count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// apiResult wraps a bucket API result so one denied call does not abort the
// whole collection.
type apiResult struct {
	Error string `json:"_error"`
}

func safeResult(value any, err error) any {
	if err != nil {
		return apiResult{Error: err.Error()}
	}
	return value
}

// CollectBucketEvidence gathers configuration evidence for every bucket.
func (c *S3EvidenceClient) CollectBucketEvidence(ctx context.Context, includeObjects bool) ([]BucketEvidence, error) {
	buckets, err := c.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	var evidence []BucketEvidence
	for _, bucket := range buckets.Buckets {
		name := aws.ToString(bucket.Name)
		info := BucketEvidence{BucketName: name}
		if bucket.CreationDate != nil {
			info.CreationDate = *bucket.CreationDate
		}

		info.Location = safeResult(c.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: bucket.Name}))
		info.ACL = safeResult(c.client.GetBucketAcl(ctx, &s3.GetBucketAclInput{Bucket: bucket.Name}))
		info.PublicAccessBlock = safeResult(c.client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: bucket.Name}))
		info.Policy = safeResult(c.client.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{Bucket: bucket.Name}))
		info.Versioning = safeResult(c.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: bucket.Name}))
		info.Encryption = safeResult(c.client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: bucket.Name}))
		info.Logging = safeResult(c.client.GetBucketLogging(ctx, &s3.GetBucketLoggingInput{Bucket: bucket.Name}))
		info.Lifecycle = safeResult(c.client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: bucket.Name}))

		if includeObjects {
			stats, err := c.objectStats(ctx, name)
			if err == nil {
				info.ObjectStats = stats
			}
		}

		evidence = append(evidence, info)
	}

	return evidence, nil
}

// objectStats counts objects and total bytes in a bucket.
func (c *S3EvidenceClient) objectStats(ctx context.Context, bucket string) (*ObjectStats, error) {
	stats := &ObjectStats{}

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			stats.ObjectCount++
			stats.TotalSizeBytes += aws.ToInt64(obj.Size)
		}
	}

	return stats, nil
}
