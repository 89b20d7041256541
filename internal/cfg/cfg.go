package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http      *HTTPConfig
	Db        *PGDBCfg
	Qdrant    *QdrantCfg
	Redis     *RedisCfg
	Kafka     *KafkaCfg
	OpenAI    *OpenAICfg
	Discovery *DiscoveryCfg
	Recommend *RecommendCfg
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
}

type RedisCfg struct {
	Addr               string
	Password           string
	User               string
	DB                 int
	MaxRetries         int
	DialTimeout        time.Duration
	Timeout            time.Duration
	RecommendationsTTL time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type OpenAICfg struct {
	BaseURL        string
	ApiKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
	MaxRetries     int
}

type DiscoveryCfg struct {
	BaseURL    string
	ApiKey     string
	MaxResults int
	Timeout    time.Duration
}

type RecommendCfg struct {
	Strategies    []string // порядок стратегий: corpus, generative, discovery
	MinCorpusSize int      // минимальный размер корпуса для векторного ранжирования
	CorpusLimit   int      // сколько чужих векторизованных записей грузить
	TopK          int      // сколько кандидатов оставляет ранкер
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	openai, err := loadOpenAICfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	discovery, err := loadDiscoveryCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recommend, err := loadRecommendCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:      http,
		Db:        db,
		Qdrant:    qdrant,
		Redis:     redis,
		Kafka:     kafka,
		OpenAI:    openai,
		Discovery: discovery,
		Recommend: recommend,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultOrigins      = "http://localhost:3000"
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", defaultOrigins), ",")

	return &HTTPConfig{
		Port:           port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		AllowedOrigins: origins,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "1536"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		logger.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", "saved_items"),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr               = "localhost:6379"
		defaultDB                 = 0
		defaultMaxRetries         = 3
		defaultDialTimeout        = 5 * time.Second
		defaultReadTimeout        = 3 * time.Second
		defaultWriteTimeout       = 3 * time.Second
		defaultRecommendationsTTL = 5 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	ttl, err := parseDurationEnv("RECOMMENDATIONS_TTL", defaultRecommendationsTTL)
	if err != nil {
		log.Errorf(err, "invalid RECOMMENDATIONS_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:               addr,
		Password:           password,
		User:               user,
		DB:                 db,
		MaxRetries:         maxRetries,
		DialTimeout:        dialTimeout,
		Timeout:            timeout,
		RecommendationsTTL: ttl,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "recommendations.generated"
	)

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := getEnvOrDefault("KAFKA_TOPIC", defaultTopic)

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadOpenAICfg(log logger.Logger) (*OpenAICfg, error) {
	const (
		defaultBaseURL        = "https://api.openai.com"
		defaultEmbeddingModel = "text-embedding-3-small"
		defaultChatModel      = "gpt-4o-mini"
		defaultTimeout        = 30 * time.Second
		defaultMaxRetries     = 3
	)

	apiKey := getEnv("OPENAI_API_KEY")
	if apiKey == "" {
		err := fmt.Errorf("OPENAI_API_KEY is required")
		log.Errorf(err, "missing OPENAI_API_KEY")
		return nil, err
	}

	timeout, err := parseDurationEnv("OPENAI_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid OPENAI_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("OPENAI_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid OPENAI_MAX_RETRIES")
		return nil, err
	}

	return &OpenAICfg{
		BaseURL:        getEnvOrDefault("OPENAI_BASE_URL", defaultBaseURL),
		ApiKey:         apiKey,
		EmbeddingModel: getEnvOrDefault("OPENAI_EMBEDDING_MODEL", defaultEmbeddingModel),
		ChatModel:      getEnvOrDefault("OPENAI_CHAT_MODEL", defaultChatModel),
		Timeout:        timeout,
		MaxRetries:     maxRetries,
	}, nil
}

func loadDiscoveryCfg(log logger.Logger) (*DiscoveryCfg, error) {
	const (
		defaultMaxResults = 10
		defaultTimeout    = 15 * time.Second
	)

	baseURL := getEnv("DISCOVERY_BASE_URL")
	if baseURL == "" {
		err := fmt.Errorf("DISCOVERY_BASE_URL is required")
		log.Errorf(err, "missing DISCOVERY_BASE_URL")
		return nil, err
	}

	maxResults, err := parseIntEnv("DISCOVERY_MAX_RESULTS", defaultMaxResults)
	if err != nil {
		log.Errorf(err, "invalid DISCOVERY_MAX_RESULTS")
		return nil, err
	}

	timeout, err := parseDurationEnv("DISCOVERY_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid DISCOVERY_TIMEOUT")
		return nil, err
	}

	return &DiscoveryCfg{
		BaseURL:    baseURL,
		ApiKey:     getEnv("DISCOVERY_API_KEY"),
		MaxResults: maxResults,
		Timeout:    timeout,
	}, nil
}

func loadRecommendCfg(log logger.Logger) (*RecommendCfg, error) {
	const (
		defaultStrategies    = "corpus,generative,discovery"
		defaultMinCorpusSize = 5
		defaultCorpusLimit   = 150
		defaultTopK          = 8
	)

	strategies := strings.Split(getEnvOrDefault("RECOMMEND_STRATEGIES", defaultStrategies), ",")

	minCorpusSize, err := parseIntEnv("MIN_CORPUS_SIZE", defaultMinCorpusSize)
	if err != nil {
		log.Errorf(err, "invalid MIN_CORPUS_SIZE")
		return nil, err
	}

	corpusLimit, err := parseIntEnv("CORPUS_LIMIT", defaultCorpusLimit)
	if err != nil {
		log.Errorf(err, "invalid CORPUS_LIMIT")
		return nil, err
	}

	topK, err := parseIntEnv("RECOMMEND_TOP_K", defaultTopK)
	if err != nil {
		log.Errorf(err, "invalid RECOMMEND_TOP_K")
		return nil, err
	}

	return &RecommendCfg{
		Strategies:    strategies,
		MinCorpusSize: minCorpusSize,
		CorpusLimit:   corpusLimit,
		TopK:          topK,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}
