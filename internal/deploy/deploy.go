// Package deploy publishes a built site directory to an S3 bucket.
//
// The publisher uploads every file under the build output, keyed by its
// path relative to that directory, then prunes remote objects that no
// longer exist locally. It is driven by "viaduct deploy".
package deploy

import (
	"context"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/viaduct-dev/viaduct/internal/errors"
)

// S3API is the slice of the S3 client the publisher uses. *s3.Client
// satisfies it; tests substitute a stub.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner signs GET URLs for published objects. *s3.PresignClient
// satisfies it.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Options configures a Publisher.
type Options struct {
	// Client is the S3 API the publisher talks to. Required.
	Client S3API

	// Bucket is the target bucket. Required.
	Bucket string

	// Prefix is the key prefix objects are published under. May be empty.
	Prefix string

	// Prune removes remote objects under Prefix that are not part of the
	// current publish.
	Prune bool

	// Presigner, when set, enables PreviewURL. Typically
	// s3.NewPresignClient over the same client.
	Presigner Presigner

	// Logger receives per-object progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Result summarizes one publish.
type Result struct {
	// Uploaded is the number of objects written.
	Uploaded int

	// Pruned is the number of stale remote objects removed.
	Pruned int

	// Bytes is the total payload size uploaded.
	Bytes int64

	// Duration is how long the publish took.
	Duration time.Duration
}

// Publisher uploads site files to S3.
type Publisher struct {
	client    S3API
	presigner Presigner
	bucket    string
	prefix    string
	prune     bool
	logger    *slog.Logger
}

// New validates the options and returns a Publisher.
func New(opts Options) (*Publisher, error) {
	if opts.Bucket == "" {
		return nil, errors.New("D002").
			WithSuggestion("Set deploy.bucket in viaduct.json or pass --bucket")
	}
	if opts.Client == nil {
		return nil, errors.New("D002").WithDetail("No S3 client was provided")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &Publisher{
		client:    opts.Client,
		presigner: opts.Presigner,
		bucket:    opts.Bucket,
		prefix:    prefix,
		prune:     opts.Prune,
		logger:    logger,
	}, nil
}

// Publish uploads every regular file under dir and, when pruning is
// enabled, deletes remote objects under the prefix that were not part of
// this publish.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(dir); err != nil {
		return nil, errors.New("D001").
			WithDetail("Build output " + dir + " does not exist").
			WithSuggestion("Run \"viaduct build\" before deploying")
	}

	result := &Result{}
	published := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := p.prefix + filepath.ToSlash(rel)

		n, err := p.putFile(ctx, key, path)
		if err != nil {
			return errors.New("D001").
				WithDetailf("Uploading %s to s3://%s/%s failed", rel, p.bucket, key).
				Wrap(err)
		}

		published[key] = true
		result.Uploaded++
		result.Bytes += n
		p.logger.Debug("uploaded object", "key", key, "bytes", n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.prune {
		pruned, err := p.pruneStale(ctx, published)
		if err != nil {
			return nil, err
		}
		result.Pruned = pruned
	}

	result.Duration = time.Since(start)
	p.logger.Info("publish complete",
		"bucket", p.bucket, "uploaded", result.Uploaded,
		"pruned", result.Pruned, "bytes", result.Bytes)
	return result, nil
}

func (p *Publisher) putFile(ctx context.Context, key, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(key)),
		CacheControl:  aws.String(cacheControl(key)),
	})
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// pruneStale removes remote objects under the prefix that were not part
// of the current publish.
func (p *Publisher) pruneStale(ctx context.Context, published map[string]bool) (int, error) {
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.prefix),
	})

	var stale []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, errors.New("D001").WithDetail("Listing existing objects failed").Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || published[*obj.Key] {
				continue
			}
			stale = append(stale, *obj.Key)
		}
	}

	for _, key := range stale {
		_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return 0, errors.New("D001").
				WithDetailf("Deleting stale object %s failed", key).
				Wrap(err)
		}
		p.logger.Debug("pruned object", "key", key)
	}
	return len(stale), nil
}

// PreviewURL presigns a GET for the published site's index.html so the
// deploy can be checked before DNS or CDN config points at the bucket.
func (p *Publisher) PreviewURL(ctx context.Context, expiry time.Duration) (string, error) {
	if p.presigner == nil {
		return "", errors.New("D002").WithDetail("No presigner was provided")
	}

	key := p.prefix + "index.html"
	req, err := p.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", errors.New("D001").
			WithDetailf("Presigning s3://%s/%s failed", p.bucket, key).
			Wrap(err)
	}
	return req.URL, nil
}

// contentType resolves the Content-Type for a key from its extension.
func contentType(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cacheControl picks cache headers by file role: HTML documents and the
// manifest must revalidate, everything else carries a content hash in its
// name and can be cached hard.
func cacheControl(key string) string {
	switch {
	case strings.HasSuffix(key, ".html"), strings.HasSuffix(key, "manifest.json"):
		return "no-cache"
	default:
		return "public, max-age=31536000, immutable"
	}
}
