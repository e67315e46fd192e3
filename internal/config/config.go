package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Neo4j   Neo4jConfig
	Redis   RedisConfig
	Channel ChannelConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	channel, err := loadChannelConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Neo4j:   loadNeo4jConfig(),
		Redis:   loadRedisConfig(),
		Channel: channel,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig holds the model credentials for the intervention composer.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// Neo4jConfig points at the relationship-graph store. Leaving the URI empty
// keeps the service on the in-memory store.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

func (c Neo4jConfig) Enabled() bool {
	return c.URI != ""
}

func loadNeo4jConfig() Neo4jConfig {
	return Neo4jConfig{
		URI:      strings.TrimSpace(os.Getenv("NEO4J_URI")),
		Username: getEnvOrDefault("NEO4J_USERNAME", "neo4j"),
		Password: strings.TrimSpace(os.Getenv("NEO4J_PASSWORD")),
		Database: getEnvOrDefault("NEO4J_DATABASE", "neo4j"),
	}
}

// RedisConfig points at the participant-profile store. Leaving the address
// empty keeps the service on the in-memory store.
type RedisConfig struct {
	Addr string
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{Addr: strings.TrimSpace(os.Getenv("REDIS_ADDR"))}
}

// ChannelConfig tunes the room event channel.
type ChannelConfig struct {
	PageSize  int
	JoinRPS   float64
	JoinBurst int
	SendRPS   float64
	SendBurst int
}

func loadChannelConfig() (ChannelConfig, error) {
	cfg := ChannelConfig{
		PageSize:  50,
		JoinRPS:   1,
		JoinBurst: 3,
		SendRPS:   2,
		SendBurst: 5,
	}

	if pageSize, err := parseOptionalIntEnv("CHANNEL_PAGE_SIZE"); err != nil {
		return ChannelConfig{}, err
	} else if pageSize != nil && *pageSize > 0 {
		cfg.PageSize = *pageSize
	}

	if sendRPS, err := parseOptionalFloatEnv("CHANNEL_SEND_RPS"); err != nil {
		return ChannelConfig{}, err
	} else if sendRPS != nil && *sendRPS > 0 {
		cfg.SendRPS = *sendRPS
	}

	if sendBurst, err := parseOptionalIntEnv("CHANNEL_SEND_BURST"); err != nil {
		return ChannelConfig{}, err
	} else if sendBurst != nil && *sendBurst > 0 {
		cfg.SendBurst = *sendBurst
	}

	if joinRPS, err := parseOptionalFloatEnv("CHANNEL_JOIN_RPS"); err != nil {
		return ChannelConfig{}, err
	} else if joinRPS != nil && *joinRPS > 0 {
		cfg.JoinRPS = *joinRPS
	}

	if joinBurst, err := parseOptionalIntEnv("CHANNEL_JOIN_BURST"); err != nil {
		return ChannelConfig{}, err
	} else if joinBurst != nil && *joinBurst > 0 {
		cfg.JoinBurst = *joinBurst
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
