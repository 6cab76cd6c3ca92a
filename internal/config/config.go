// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感字段可由环境变量覆盖
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称
	Host    string `toml:"host"`    // 监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 监听端口，如 8000
	Mode    string `toml:"mode"`    // gin 运行模式：debug / release / test
	TLS     bool   `toml:"tls"`     // 是否启用 HTTPS 重定向中间件
	Locale  string `toml:"locale"`  // 参数校验错误的翻译语言：zh / en
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	Db           int    `toml:"db"`
	Enabled      bool   `toml:"enabled"`      // 关闭时使用进程内缓存
	WorkerNum    int    `toml:"workerNum"`    // 异步缓存任务 Worker 数量
	TaskChanSize int    `toml:"taskChanSize"` // 异步缓存任务缓冲区大小
	HistoryTTL   int    `toml:"historyTTL"`   // 房间消息历史缓存有效期（分钟）
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`
	FileName   string `toml:"fileName"`
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // debug, info, warn, error
}

// KafkaConfig 聊天事件流配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel" 不投递事件，"kafka" 投递到 Kafka
	HostPort    string        `toml:"hostPort"`    // 如 "localhost:9092"
	ChatTopic   string        `toml:"chatTopic"`   // 聊天事件主题
	Timeout     time.Duration `toml:"timeout"`     // 写超时（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023
}

// ChatConfig 实时聊天参数
type ChatConfig struct {
	PreviewLength    int    `toml:"previewLength"`    // 房间最后一条消息预览的最大字符数
	SendBufferSize   int    `toml:"sendBufferSize"`   // 每个连接的发送队列长度
	MaxMessageBytes  int    `toml:"maxMessageBytes"`  // 单帧最大字节数
	ArchiveAfterDays int    `toml:"archiveAfterDays"` // resolved 房间闲置多少天后归档为 closed
	ArchiveSchedule  string `toml:"archiveSchedule"`  // 归档任务 cron 表达式
}

// StaffConfig 初始客服账号，migrate 时写入
type StaffConfig struct {
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	DisplayName string `toml:"displayName"`
}

// Config 应用程序总配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	ChatConfig      `toml:"chatConfig"`
	StaffConfig     `toml:"staffConfig"`
}

// searchPaths 候选配置文件路径，本地配置优先
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Default 返回填充了默认值的配置
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{AppName: "shop_chat_server", Host: "0.0.0.0", Port: 8000, Mode: "debug", Locale: "zh"},
		RedisConfig: RedisConfig{
			Host: "127.0.0.1", Port: 6379, WorkerNum: 15, TaskChanSize: 3000, HistoryTTL: 30,
		},
		LogConfig:       LogConfig{LogPath: "./logs", Level: "info"},
		KafkaConfig:     KafkaConfig{MessageMode: "channel", ChatTopic: "shop_chat_events", Timeout: 1},
		JWTConfig:       JWTConfig{AccessTokenExpiry: 60, RefreshTokenExpiry: 168},
		SnowflakeConfig: SnowflakeConfig{MachineID: 1},
		ChatConfig: ChatConfig{
			PreviewLength:    100,
			SendBufferSize:   256,
			MaxMessageBytes:  8192,
			ArchiveAfterDays: 14,
			ArchiveSchedule:  "0 3 * * *",
		},
	}
}

// Load 从指定路径加载配置；path 为空时依次尝试候选路径，全部不存在时使用默认值
// 文件存在但无法解析时返回解析错误，不会退回默认值
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	paths := searchPaths
	if path != "" {
		paths = []string{path}
	}

	loaded := false
	for _, p := range paths {
		if _, err := toml.DecodeFile(p, cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("decode configuration file %s: %w", p, err)
		}
		loaded = true
		break
	}
	if !loaded && path != "" {
		return nil, fmt.Errorf("configuration file %s: %w", path, fs.ErrNotExist)
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv 使用 SHOPCHAT_* 环境变量覆盖敏感配置
func applyEnv(cfg *Config) {
	if v := os.Getenv("SHOPCHAT_MYSQL_PASSWORD"); v != "" {
		cfg.MysqlConfig.Password = v
	}
	if v := os.Getenv("SHOPCHAT_REDIS_PASSWORD"); v != "" {
		cfg.RedisConfig.Password = v
	}
	if v := os.Getenv("SHOPCHAT_JWT_SECRET"); v != "" {
		cfg.JWTConfig.Secret = v
	}
	if v := os.Getenv("SHOPCHAT_KAFKA_HOSTPORT"); v != "" {
		cfg.KafkaConfig.HostPort = v
	}
	if v := os.Getenv("SHOPCHAT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MainConfig.Port = port
		}
	}
}
