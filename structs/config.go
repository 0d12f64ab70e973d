package structs

import "time"

type Config struct {
	Server   *ServerConfig
	Cors     *CorsConfig
	Database *DatabaseConfig
	Cache    *CacheConfig
	Storage  *StorageConfig
	Import   *ImportConfig
}

type ServerConfig struct {
	AppName        string        // ToyCatalog
	Environment    string        // development, production
	Port           string        // :8082
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration // in seconds
	MaxIdleTime  time.Duration // in seconds
	ReadTimeout  time.Duration // in seconds
	WriteTimeout time.Duration // in seconds
}

type CacheConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ItemTTL      time.Duration
}

// StorageConfig locates the managed file directories. UploadDir holds
// processed item images, ExportDir holds transient generated workbooks.
type StorageConfig struct {
	UploadDir      string
	ExportDir      string
	MaxUploadBytes int64
}

// ImportConfig tunes the spreadsheet import pipeline.
type ImportConfig struct {
	WorkerCount  int           // image processing workers
	ImageTimeout time.Duration // per-image processing deadline
	BatchSize    int           // records staged per flush
	MaxImageDim  int           // longest allowed edge after resize
	JPEGQuality  int           // 1-100 encode quality
}
