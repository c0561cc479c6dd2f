// Ininicializing common application configuration
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Transform TransformConfig `mapstructure:"transform"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

type TransformConfig struct {
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`
	MaxSourceBytes  int64         `mapstructure:"max_source_bytes"`
	MaxSourcePixels int64         `mapstructure:"max_source_pixels"` // width*height declared by the source header
	MaxDimension    int           `mapstructure:"max_dimension"`
	StorageRoot     string        `mapstructure:"storage_root"` // empty disables file:// URLs
}

type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	GroupID      string   `mapstructure:"group_id"`
	ResultsTopic string   `mapstructure:"results_topic"`
	Workers      int      `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.request_timeout", 55*time.Second)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("transform.fetch_timeout", 10*time.Second)
	v.SetDefault("transform.upload_timeout", 30*time.Second)
	v.SetDefault("transform.max_source_bytes", 32<<20)
	v.SetDefault("transform.max_dimension", 10000)
	v.SetDefault("transform.max_source_pixels", 50_000_000)
	v.SetDefault("transform.storage_root", "")

	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "images")
	v.SetDefault("kafka.group_id", "image-processor-service")
	v.SetDefault("kafka.results_topic", "images-results")
	v.SetDefault("kafka.workers", 4)
}

// LoadConfig reads config.yaml from $CONFIG_PATH (./config by default)
// when present. Every key can be overridden from the environment, e.g.
// TRANSFORM_MAX_DIMENSION.
func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath(GetEnv("CONFIG_PATH", "./config"))
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	err := viperInstance.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
