package main

import (
	"fmt"

	"shop_chat_server/internal/config"
	dao "shop_chat_server/internal/dao/mysql"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/service"
	"shop_chat_server/internal/service/auth"
	"shop_chat_server/pkg/util/snowflake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "迁移表结构并写入初始客服账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			snowflake.Init(cfg.SnowflakeConfig.MachineID)

			// Init 内部执行 AutoMigrate
			repos, _, err := dao.Init(&cfg.MysqlConfig)
			if err != nil {
				return err
			}
			if err := seedStaff(auth.NewAuthService(repos, myredis.NewMemoryCache()), &cfg.StaffConfig); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated database %s\n", cfg.MysqlConfig.DatabaseName)
			return nil
		},
	}
}

// seedStaff 配置了初始客服账号时确保其存在
func seedStaff(svc service.AuthService, conf *config.StaffConfig) error {
	if conf.Username == "" {
		return nil
	}
	created, err := svc.EnsureStaff(conf.Username, conf.Password, conf.DisplayName)
	if err != nil {
		return fmt.Errorf("seed staff %q: %w", conf.Username, err)
	}
	if created {
		zap.L().Info("初始客服账号已创建", zap.String("username", conf.Username))
	}
	return nil
}
