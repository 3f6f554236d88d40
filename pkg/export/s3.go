package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/invoice-generator/pkg/config"
	"github.com/invoice-generator/pkg/invoice"
)

// ObjectPutter is the part of the S3 client used by S3.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads rendered documents to a bucket.
type S3 struct {
	Client   ObjectPutter
	Renderer Renderer
	Bucket   string
	Prefix   string
}

// NewS3 builds an S3 exporter using the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.S3Config, r Renderer) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{Client: client, Renderer: r, Bucket: cfg.Bucket, Prefix: cfg.Prefix}, nil
}

// Key is the object key inv is stored under.
func (e *S3) Key(inv invoice.Invoice) string {
	return path.Join(e.Prefix, Filename(e.Renderer, inv))
}

func (e *S3) Export(ctx context.Context, inv invoice.Invoice) error {
	var buf bytes.Buffer
	if err := e.Renderer.Render(&buf, inv); err != nil {
		return err
	}
	_, err := e.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.Bucket),
		Key:         aws.String(e.Key(inv)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(e.Renderer.ContentType()),
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s: %w", e.Key(inv), e.Bucket, err)
	}
	return nil
}
