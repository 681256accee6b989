package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string        `validate:"required"`
	AppSecret   string        `validate:"required"`
	DatabaseURL string
	JWTExpiry   time.Duration `validate:"gt=0"`
	Port        string        `validate:"required,numeric"`
	SiteName    string

	// 管理员登录（密码以 bcrypt 哈希保存）
	AdminUsername     string
	AdminPasswordHash string

	// 数据文件
	RawDataDir    string `validate:"required"`
	CleanDataPath string `validate:"required"`

	// 嵌入服务
	EmbeddingBackend string `validate:"oneof=ollama gemini"`
	EmbeddingDim     int    `validate:"gt=0"`
	OllamaHost       string
	OllamaModel      string
	GeminiAPIKey     string
	GeminiEmbedModel string

	// 向量索引
	VectorBackend     string `validate:"oneof=pinecone pgvector"`
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	// 查询阈值
	SemanticTopK     int     `validate:"gt=0,lte=100"`
	SemanticMinVotes float64 `validate:"gte=0"`
	TopMinVotes      float64 `validate:"gte=0"`
	DefaultTopN      int     `validate:"gt=0"`

	ExternalTimeout  time.Duration `validate:"gt=0"`
	IndexConcurrency int           `validate:"gt=0"`
	EmbedCacheSize   int           `validate:"gt=0"`
	CatalogRefresh   time.Duration `validate:"gt=0"`
}

// Load 加载配置
func Load() (*Config, error) {
	expiryHours := getEnvInt("JWT_EXPIRY_HOURS", 72)

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "bingewatch")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", defaultSecret))

	if getEnv("APP_ENV", "development") == "production" && appSecret == defaultSecret {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		AppSecret:   appSecret,
		DatabaseURL: dbURL,
		JWTExpiry:   time.Duration(expiryHours) * time.Hour,
		Port:        getEnv("PORT", "5005"),
		SiteName:    getEnv("SITE_NAME", "Aventuras en el Sofá"),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		RawDataDir:    getEnv("RAW_DATA_DIR", "data"),
		CleanDataPath: getEnv("CLEAN_DATA_PATH", "data/clean_data/series.csv"),

		EmbeddingBackend: getEnv("EMBEDDING_BACKEND", "ollama"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", 384),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "all-minilm"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),

		VectorBackend:     getEnv("VECTOR_BACKEND", "pinecone"),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", ""),

		SemanticTopK:     getEnvInt("SEMANTIC_TOP_K", 5),
		SemanticMinVotes: getEnvFloat("SEMANTIC_MIN_VOTES", 10000),
		TopMinVotes:      getEnvFloat("TOP_MIN_VOTES", 10000),
		DefaultTopN:      getEnvInt("DEFAULT_TOP_N", 10),

		ExternalTimeout:  time.Duration(getEnvInt("EXTERNAL_TIMEOUT_SECONDS", 10)) * time.Second,
		IndexConcurrency: getEnvInt("INDEX_CONCURRENCY", 4),
		EmbedCacheSize:   getEnvInt("EMBED_CACHE_SIZE", 1000),
		CatalogRefresh:   time.Duration(getEnvInt("CATALOG_REFRESH_SECONDS", 60)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// embeddingCredentials 嵌入服务凭据，创建后端时才校验
type embeddingCredentials struct {
	Backend      string
	OllamaHost   string `validate:"required_if=Backend ollama,omitempty,url"`
	GeminiAPIKey string `validate:"required_if=Backend gemini"`
}

// vectorCredentials 向量索引凭据，创建后端时才校验
type vectorCredentials struct {
	Backend           string
	PineconeAPIKey    string `validate:"required_if=Backend pinecone"`
	PineconeIndexHost string `validate:"required_if=Backend pinecone"`
	DatabaseURL       string `validate:"required_if=Backend pgvector"`
}

// ValidateEmbedding 校验所选嵌入后端的凭据
func (c *Config) ValidateEmbedding() error {
	creds := embeddingCredentials{
		Backend:      c.EmbeddingBackend,
		GeminiAPIKey: c.GeminiAPIKey,
	}
	// 仅在选用 ollama 时校验其地址
	if c.EmbeddingBackend == "ollama" {
		creds.OllamaHost = c.OllamaHost
	}
	if err := validator.New().Struct(creds); err != nil {
		return fmt.Errorf("嵌入服务 %s 配置不完整: %w", c.EmbeddingBackend, err)
	}
	return nil
}

// ValidateVectorIndex 校验所选向量索引后端的凭据
func (c *Config) ValidateVectorIndex() error {
	creds := vectorCredentials{
		Backend:           c.VectorBackend,
		PineconeAPIKey:    c.PineconeAPIKey,
		PineconeIndexHost: c.PineconeIndexHost,
		DatabaseURL:       c.DatabaseURL,
	}
	if err := validator.New().Struct(creds); err != nil {
		return fmt.Errorf("向量索引 %s 配置不完整: %w", c.VectorBackend, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
