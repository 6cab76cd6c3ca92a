// Package mysql 负责建立 MySQL 连接、迁移表结构并构造 Repository 层
package mysql

import (
	"fmt"
	"time"

	"shop_chat_server/internal/config"
	"shop_chat_server/internal/dao/mysql/repository"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DSN 构建 MySQL 连接串
func DSN(conf *config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User, conf.Password, conf.Host, conf.Port, conf.DatabaseName)
}

// Open 打开数据库连接并配置连接池
func Open(conf *config.MysqlConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysqldriver.Open(DSN(conf)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql %s:%d: %w", conf.Host, conf.Port, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Init 连接数据库、执行 AutoMigrate，返回 Repository 聚合
func Init(conf *config.MysqlConfig) (*repository.Repositories, *gorm.DB, error) {
	db, err := Open(conf)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("auto migrate: %w", err)
	}
	zap.L().Info("mysql ready", zap.String("database", conf.DatabaseName))
	return repository.NewRepositories(db), db, nil
}
