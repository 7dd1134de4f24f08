package firebase

import (
	"context"
	"io"

	"trendscope-backend/utils"

	"github.com/sirupsen/logrus"
)

// StorageClient abstracts blob storage for dependency injection and testing.
type StorageClient interface {
	UploadImage(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error)
	RehostImage(ctx context.Context, imageURL, folder string) (string, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

var _ StorageClient = (*Storage)(nil)

// DeleteImages removes every stored object referenced by urls. Failures are
// logged and skipped; URLs that do not point at the bucket are ignored.
// It returns how many objects were deleted.
func DeleteImages(ctx context.Context, client StorageClient, urls []string) int {
	if client == nil {
		return 0
	}

	deleted := 0
	for _, u := range urls {
		path, err := utils.ExtractObjectPath(u)
		if err != nil {
			continue
		}
		if err := client.DeleteFile(ctx, path); err != nil {
			logrus.WithError(err).WithField("object", path).Warn("failed to delete image")
			continue
		}
		deleted++
	}
	return deleted
}
