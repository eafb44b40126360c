package cmd

import (
	"OtoDist/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动OtoDist服务器",
	Long:  `启动投稿系统的HTTP服务器，提供表单提交与查询API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
