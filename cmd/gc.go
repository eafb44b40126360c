package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"OtoDist/config"
	"OtoDist/core/gc"
	"OtoDist/db"
	"OtoDist/logger"
	"OtoDist/repository"
	"OtoDist/storage"

	"github.com/spf13/cobra"
)

var (
	gcCutoffHours int
	gcDryRun      bool
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "清理无引用的存储对象",
	Long: `扫描存储桶，删除没有任何投稿记录引用的孤儿对象。
上传成功但记录写入前进程崩溃会留下这类对象。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.InfoLevel})

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "初始化对象存储失败: %v\n", err)
			os.Exit(1)
		}

		gormDB, err := db.ConnectGorm(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "连接数据库失败: %v\n", err)
			os.Exit(1)
		}
		defer db.CloseGorm(gormDB)

		repo := repository.NewGormSubmissionRepository(gormDB)
		sweeper := gc.NewSweeper(store, repo, time.Duration(gcCutoffHours)*time.Hour, gcDryRun)

		removed, err := sweeper.Sweep(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "清理失败: %v\n", err)
			os.Exit(1)
		}

		if gcDryRun {
			fmt.Printf("发现 %d 个孤儿对象（dry-run，未删除）\n", removed)
		} else {
			fmt.Printf("已删除 %d 个孤儿对象\n", removed)
		}
	},
}

func init() {
	gcCmd.Flags().IntVar(&gcCutoffHours, "cutoff", 24, "仅删除早于该小时数的对象")
	gcCmd.Flags().BoolVar(&gcDryRun, "dry-run", false, "只列出将要删除的对象")
	rootCmd.AddCommand(gcCmd)
}
