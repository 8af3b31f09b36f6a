package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"SuiAI-SDK/pkg/journal"
	"SuiAI-SDK/pkg/logger"
)

// EnvConfigPath 指定配置文件路径的环境变量。
const EnvConfigPath = "SUIAI_CONFIG"

// DefaultPath 是未设置 SUIAI_CONFIG 时使用的配置文件。
const DefaultPath = "configs/suiai.json"

// 默认的身份环境变量名。
const (
	DefaultMnemonicEnv  = "SUIAI_MNEMONIC"
	DefaultSecretKeyEnv = "SUIAI_SECRET_KEY"
)

// DefaultGasBudget 与 SDK 默认值保持一致，单位 MIST。
const DefaultGasBudget uint64 = 50_000_000

// Config 描述 SDK 进程启动时需要的全部配置。
type Config struct {
	Network  NetworkConfig  `json:"network"`
	Identity IdentityConfig `json:"identity"`
	Log      logger.Config  `json:"log"`
	Journal  JournalConfig  `json:"journal"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// NetworkConfig 描述目标网络与合约包。
type NetworkConfig struct {
	Name           string `json:"name"`
	PackageID      string `json:"package_id"`
	RPCURL         string `json:"rpc_url"`
	NetworksFile   string `json:"networks_file"`
	GasBudget      uint64 `json:"gas_budget"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// IdentityConfig 指定从哪些环境变量读取签名材料。密钥本身不写入配置文件。
type IdentityConfig struct {
	MnemonicEnv  string `json:"mnemonic_env"`
	SecretKeyEnv string `json:"secret_key_env"`
}

// JournalConfig 选择提交日志的存储后端。
type JournalConfig struct {
	// Driver 取值 memory、redis、mysql 或 none。
	Driver   string                  `json:"driver"`
	Capacity int                     `json:"capacity"`
	Redis    journal.RedisConfig     `json:"redis"`
	MySQL    journal.MySQLConfig     `json:"mysql"`
	RabbitMQ *journal.RabbitMQConfig `json:"rabbitmq,omitempty"`
}

// MetricsConfig 控制 Prometheus 指标的注册。
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
	// Textfile 非空时，命令结束后以 textfile collector 格式写出指标。
	Textfile string `json:"textfile"`
}

// Journal drivers.
const (
	JournalMemory = "memory"
	JournalRedis  = "redis"
	JournalMySQL  = "mysql"
	JournalNone   = "none"
)

// PathFromEnv 返回 SUIAI_CONFIG 指定的路径，未设置时返回 DefaultPath。
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional 与 Load 相同，但文件不存在时返回默认配置。
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		return cfg, nil
	}
	return Load(path)
}

// Default 返回仅包含默认值的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(".")
	return cfg
}

// Validate 检查互相依赖的字段。
func (c *Config) Validate() error {
	switch c.Journal.Driver {
	case JournalMemory, JournalNone:
	case JournalRedis:
		if c.Journal.Redis.Address == "" {
			return errors.New("journal.redis.address 不能为空")
		}
	case JournalMySQL:
		if strings.TrimSpace(c.Journal.MySQL.DSN) == "" {
			return errors.New("journal.mysql.dsn 不能为空")
		}
	default:
		return fmt.Errorf("不支持的 journal.driver: %s", c.Journal.Driver)
	}
	if c.Journal.RabbitMQ != nil && c.Journal.RabbitMQ.URL == "" {
		return errors.New("journal.rabbitmq.url 不能为空")
	}
	return nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Network.Name == "" {
		c.Network.Name = "testnet"
	}
	if c.Network.GasBudget == 0 {
		c.Network.GasBudget = DefaultGasBudget
	}
	if c.Network.TimeoutSeconds <= 0 {
		c.Network.TimeoutSeconds = 30
	}
	if c.Network.NetworksFile != "" && !filepath.IsAbs(c.Network.NetworksFile) {
		c.Network.NetworksFile = filepath.Join(baseDir, c.Network.NetworksFile)
	}

	if c.Identity.MnemonicEnv == "" {
		c.Identity.MnemonicEnv = DefaultMnemonicEnv
	}
	if c.Identity.SecretKeyEnv == "" {
		c.Identity.SecretKeyEnv = DefaultSecretKeyEnv
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Audit.Enabled && c.Log.Audit.Path == "" {
		c.Log.Audit.Path = filepath.Join(baseDir, "logs", "audit.log")
	} else if c.Log.Audit.Path != "" && !filepath.IsAbs(c.Log.Audit.Path) {
		c.Log.Audit.Path = filepath.Join(baseDir, c.Log.Audit.Path)
	}

	if c.Metrics.Textfile != "" && !filepath.IsAbs(c.Metrics.Textfile) {
		c.Metrics.Textfile = filepath.Join(baseDir, c.Metrics.Textfile)
	}

	c.Journal.Driver = strings.ToLower(strings.TrimSpace(c.Journal.Driver))
	if c.Journal.Driver == "" {
		c.Journal.Driver = JournalMemory
	}
}
