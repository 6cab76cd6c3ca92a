package main

import (
	"fmt"
	"os"

	"shop_chat_server/internal/config"
	"shop_chat_server/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 构建时通过 ldflags 注入
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "shop_chat_server",
		Short:         "乐器商城客服实时聊天服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径，为空时按默认路径查找")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newStaffCmd(&configPath))
	cmd.AddCommand(newEventsCmd(&configPath))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shop_chat_server %s (commit: %s)\n", Version, Commit)
		},
	}
}

// bootstrap 加载配置并初始化日志，所有子命令共用
func bootstrap(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(&cfg.LogConfig, cfg.MainConfig.Mode); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.L().Info("配置加载成功", zap.String("app", cfg.MainConfig.AppName))
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
