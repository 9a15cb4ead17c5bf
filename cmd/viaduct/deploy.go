package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/viaduct-dev/viaduct/internal/build"
	"github.com/viaduct-dev/viaduct/internal/config"
	"github.com/viaduct-dev/viaduct/internal/deploy"
	"github.com/viaduct-dev/viaduct/internal/errors"
)

func deployCmd() *cobra.Command {
	var (
		bucket    string
		prefix    string
		region    string
		prune     bool
		skipBuild bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish the built site to S3",
		Long: `Build the site and upload it to an S3 bucket.

The bucket, key prefix and region come from viaduct.json's deploy
section; flags override them. Credentials are read from the standard
AWS environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
and optionally AWS_SESSION_TOKEN).

Examples:
  viaduct deploy
  viaduct deploy --bucket=my-site --region=eu-west-1
  viaduct deploy --prune --skip-build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(bucket, prefix, region, prune, skipBuild)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Target S3 bucket (default from viaduct.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix to publish under (default from viaduct.json)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from viaduct.json or AWS_REGION)")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete remote objects not part of this publish")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Publish the existing build output without rebuilding")

	return cmd
}

func runDeploy(bucket, prefix, region string, prune, skipBuild bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides.
	if bucket == "" {
		bucket = cfg.Deploy.Bucket
	}
	if prefix == "" {
		prefix = cfg.Deploy.Prefix
	}
	if region == "" {
		region = cfg.Deploy.Region
	}
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if !skipBuild {
		fmt.Println("  Building static site...")
		builder := build.New(cfg, build.Options{Shell: projectShell(cfg)})
		if _, err := builder.Build(ctx); err != nil {
			return err
		}
		success("Build complete")
		fmt.Println()
	}

	client := s3.New(s3.Options{
		Region:      region,
		Credentials: environmentCredentials(),
	})
	publisher, err := deploy.New(deploy.Options{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		Prefix:    prefix,
		Prune:     prune,
	})
	if err != nil {
		return err
	}

	fmt.Printf("  Publishing to s3://%s/%s\n", bucket, prefix)
	fmt.Println()

	result, err := publisher.Publish(ctx, cfg.OutputPath())
	if err != nil {
		return err
	}

	success("Deployed %d objects (%s) in %s", result.Uploaded, formatBytes(result.Bytes), result.Duration.Round(time.Millisecond))
	if result.Pruned > 0 {
		info("Pruned %d stale objects", result.Pruned)
	}
	if url, err := publisher.PreviewURL(ctx, 15*time.Minute); err == nil {
		info("Preview (15m): %s", url)
	}
	if cfg.BaseURL != "" {
		fmt.Println()
		info("Live at %s", cfg.BaseURL)
	}
	fmt.Println()

	return nil
}

// environmentCredentials resolves AWS credentials from the standard
// environment variables. The CLI deliberately avoids a config-file
// credential chain; CI environments inject these variables.
func environmentCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("D002").
				WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set").
				WithSuggestion("Export AWS credentials before running viaduct deploy")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}
