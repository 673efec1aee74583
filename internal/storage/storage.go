package storage

import (
	"context"
	"sort"
	"time"
)

// ObjectInfo describes one archived report.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Uploader is the write side of the report archive.
type Uploader interface {
	UploadObject(ctx context.Context, key string, data []byte) error
}

// Archive browses and retrieves exported reports.
type Archive interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
}

// ObjectStorage is the full bucket surface backed by MinioClient.
type ObjectStorage interface {
	Uploader
	Archive
}

// NewestFirst orders objects by modification time, most recent first, and
// by key when timestamps tie.
func NewestFirst(objects []ObjectInfo) {
	sort.SliceStable(objects, func(i, j int) bool {
		if !objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].LastModified.After(objects[j].LastModified)
		}
		return objects[i].Key < objects[j].Key
	})
}
