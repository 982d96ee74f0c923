// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// BucketEnvVar names the environment variable that enables report
// archival to Cloud Storage.
const BucketEnvVar = "REPORTS_BUCKET"

// Archiver uploads generated HTML reports to a GCS bucket.
//
// # Thread Safety
//
// Safe for concurrent use once constructed.
type Archiver struct {
	client *storage.Client
	bucket string
}

// NewArchiver builds an Archiver from REPORTS_BUCKET. When the
// variable is unset, archival is disabled and (nil, nil) is returned.
func NewArchiver(ctx context.Context) (*Archiver, error) {
	bucket := os.Getenv(BucketEnvVar)
	if bucket == "" {
		slog.Debug("report archival disabled", "env", BucketEnvVar)
		return nil, nil
	}

	var opts []option.ClientOption
	if creds := os.Getenv("REPORTS_CREDENTIALS_FILE"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("report archiver: storage client: %w", err)
	}
	slog.Info("report archival enabled", "bucket", bucket)
	return &Archiver{client: client, bucket: bucket}, nil
}

// Archive uploads an HTML report under reports/<date>/<name>.html and
// returns the object path.
func (a *Archiver) Archive(ctx context.Context, name, html string, now time.Time) (string, error) {
	object := fmt.Sprintf("reports/%s/%s.html", now.Format("2006-01-02"), name)

	w := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/html; charset=utf-8"
	if _, err := w.Write([]byte(html)); err != nil {
		w.Close()
		return "", fmt.Errorf("archive %s: write: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("archive %s: close: %w", object, err)
	}

	slog.Info("report archived", "bucket", a.bucket, "object", object)
	return object, nil
}

// Close releases the underlying storage client.
func (a *Archiver) Close() error {
	return a.client.Close()
}
