package main

import (
	"fmt"

	dao "shop_chat_server/internal/dao/mysql"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/service/auth"
	"shop_chat_server/pkg/util/snowflake"

	"github.com/spf13/cobra"
)

func newStaffCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "客服账号管理",
	}
	cmd.AddCommand(newStaffCreateCmd(configPath))
	return cmd
}

func newStaffCreateCmd(configPath *string) *cobra.Command {
	var username, password, displayName string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "创建客服账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			snowflake.Init(cfg.SnowflakeConfig.MachineID)

			repos, _, err := dao.Init(&cfg.MysqlConfig)
			if err != nil {
				return err
			}
			staff, err := auth.NewAuthService(repos, myredis.NewMemoryCache()).CreateStaff(username, password, displayName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created staff %s (%s)\n", staff.Username, staff.Uuid)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "登录名")
	cmd.Flags().StringVarP(&password, "password", "p", "", "密码，至少 6 位")
	cmd.Flags().StringVar(&displayName, "display-name", "", "聊天中展示的名称，默认同登录名")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
