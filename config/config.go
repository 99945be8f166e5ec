package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8890"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"sellercare"`

	// PostgreSQL 配置
	PostgreSQLHost        string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort        string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser        string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword    string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase    string `env:"POSTGRESQL_DATABASE" envDefault:"sellercare"`
	PostgreSQLSchema      string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode     string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle     int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen     int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplicaHost string `env:"POSTGRESQL_REPLICA_HOST"` // 为空时不启用读写分离

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"scare"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置（管理端 API 鉴权）
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 发送通道配置
	// 通道是账号在线实例的网关，负责把聊天消息/评价请求转发给对应账号的平台会话
	ChannelProvider       string `env:"CHANNEL_PROVIDER" envDefault:"gateway"` // gateway, mock
	ChannelGatewayBaseURL string `env:"CHANNEL_GATEWAY_BASE_URL" envDefault:"http://localhost:9630"`
	ChannelGatewayToken   string `env:"CHANNEL_GATEWAY_TOKEN"`
	ChannelSendTimeoutSec int    `env:"CHANNEL_SEND_TIMEOUT_SECONDS" envDefault:"30"`

	// 跟进引擎配置
	FollowUpTickSeconds int `env:"FOLLOWUP_TICK_SECONDS" envDefault:"60"`
	FollowUpPaceSeconds int `env:"FOLLOWUP_PACE_SECONDS" envDefault:"2"`

	// AI 回复引擎（可选的消息内容提供方）
	AIReplyEnabled bool   `env:"AI_REPLY_ENABLED" envDefault:"false"`
	AIReplyBaseURL string `env:"AI_REPLY_BASE_URL" envDefault:"https://dashscope.aliyuncs.com/compatible-mode/v1"`
	AIReplyAPIKey  string `env:"AI_REPLY_API_KEY"`
	AIReplyModel   string `env:"AI_REPLY_MODEL" envDefault:"qwen-plus"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪与指标配置
	OTelEnabled  bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampler  float64 `env:"OTEL_SAMPLER" envDefault:"0.1"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if Cfg.FollowUpTickSeconds <= 0 {
		log.Fatal("FOLLOWUP_TICK_SECONDS must be positive")
	}

	if Cfg.ChannelProvider == "gateway" && Cfg.ChannelGatewayBaseURL == "" {
		log.Fatal("CHANNEL_GATEWAY_BASE_URL is required for the gateway channel provider")
	}

	if Cfg.AIReplyEnabled && Cfg.AIReplyAPIKey == "" {
		log.Printf("WARN: AI_REPLY_API_KEY is not set, AI reply content will be unavailable")
	}

	if Cfg.OTelEnabled && Cfg.OTLPEndpoint == "" {
		log.Printf("WARN: OTLP_ENDPOINT is not set, telemetry export will not work")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

// GetReplicaDSN 读库 DSN，未配置副本时返回空串
func (c *Config) GetReplicaDSN() string {
	if c.PostgreSQLReplicaHost == "" {
		return ""
	}
	return "host=" + c.PostgreSQLReplicaHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
