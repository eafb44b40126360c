package storage

import (
	"context"
	"fmt"
	"time"
)

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// Stats 汇总指定前缀下的对象统计
func Stats(ctx context.Context, store ObjectStore, prefix string) ([]ObjectInfo, *BucketStats, error) {
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}

	stats := &BucketStats{}
	for _, object := range objects {
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
	}

	return objects, stats, nil
}

// PrintStatus 打印存储桶状态，供 CLI 使用
func PrintStatus(ctx context.Context, store ObjectStore, prefix string) error {
	objects, stats, err := Stats(ctx, store, prefix)
	if err != nil {
		return err
	}

	fmt.Printf("对象数量: %d\n", stats.TotalObjects)
	fmt.Printf("总大小: %.2f MB\n", float64(stats.TotalSize)/1024/1024)
	if !stats.LastModified.IsZero() {
		fmt.Printf("最后修改时间: %s\n", stats.LastModified.Format(time.RFC3339))
	}

	for _, object := range objects {
		fmt.Printf("%s  %.2f MB  %s\n",
			object.Key,
			float64(object.Size)/1024/1024,
			object.LastModified.Format(time.RFC3339))
	}

	return nil
}
