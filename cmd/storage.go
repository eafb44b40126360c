package cmd

import (
	"context"
	"fmt"
	"os"

	"OtoDist/config"
	"OtoDist/logger"
	"OtoDist/storage"

	"github.com/spf13/cobra"
)

var storagePrefix string

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "查看对象存储状态",
	Long:  `列出存储桶中的对象并打印统计信息`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.WarnLevel})

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "初始化对象存储失败: %v\n", err)
			os.Exit(1)
		}

		if err := storage.PrintStatus(context.Background(), store, storagePrefix); err != nil {
			fmt.Fprintf(os.Stderr, "读取存储桶状态失败: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	storageCmd.Flags().StringVar(&storagePrefix, "prefix", "", "仅统计指定前缀下的对象")
	rootCmd.AddCommand(storageCmd)
}
