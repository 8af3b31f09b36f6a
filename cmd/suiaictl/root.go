package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"SuiAI-SDK/internal/config"
	"SuiAI-SDK/pkg/journal"
	"SuiAI-SDK/pkg/logger"
	"SuiAI-SDK/sdk/go/suiai"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	network    string
	packageID  string
	rpcURL     string
	gasBudget  uint64
	jsonOutput bool
}

// app 持有一次命令执行期间打开的资源。
type app struct {
	cfg      *config.Config
	sdk      *suiai.SDK
	journal  journal.Sink
	registry *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "suiaictl",
		Short: "Register AI models and agents on Sui and run inference",
		Long: `suiaictl drives the on-chain AI package from the command line.

Signing material is read from the environment (SUIAI_MNEMONIC or
SUIAI_SECRET_KEY by default); a .env file in the working directory is
loaded automatically.

Examples:
  suiaictl --package 0xabc model create --file model.json
  suiaictl --package 0xabc agent create --name A --model 0x1 --capability x
  suiaictl --package 0xabc infer --agent 0x2 --input "hello"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.PathFromEnv(), "path to the JSON config file")
	pf.StringVar(&flags.network, "network", "", "network name (mainnet, testnet, devnet, localnet or from the networks file)")
	pf.StringVar(&flags.packageID, "package", "", "address of the deployed AI package")
	pf.StringVar(&flags.rpcURL, "rpc-url", "", "override the fullnode JSON-RPC endpoint")
	pf.Uint64Var(&flags.gasBudget, "gas-budget", 0, "gas budget per transaction in MIST")
	pf.BoolVar(&flags.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(
		newModelCmd(flags),
		newAgentCmd(flags),
		newInferCmd(flags),
		newObjectCmd(flags),
		newAgentsCmd(flags),
		newModelsCmd(flags),
		newIdentityCmd(flags),
		newHistoryCmd(flags),
		newNetworksCmd(flags),
	)
	return cmd
}

// loadConfig 读取配置文件并叠加命令行参数。
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadOptional(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.network != "" {
		cfg.Network.Name = flags.network
	}
	if flags.packageID != "" {
		cfg.Network.PackageID = flags.packageID
	}
	if flags.rpcURL != "" {
		cfg.Network.RPCURL = flags.rpcURL
	}
	if flags.gasBudget > 0 {
		cfg.Network.GasBudget = flags.gasBudget
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, nil
}

// openApp 构建 SDK。requireIdentity 为 false 时缺少签名材料不会报错。
func openApp(ctx context.Context, flags *rootFlags, requireIdentity bool) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	id, err := identityFromEnv(cfg.Identity)
	if err != nil {
		return nil, err
	}
	if id == nil && requireIdentity {
		return nil, fmt.Errorf("%w: set %s or %s", suiai.ErrMissingIdentity, cfg.Identity.MnemonicEnv, cfg.Identity.SecretKeyEnv)
	}

	a := &app{cfg: cfg}
	sink, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		return nil, err
	}
	a.journal = sink

	opts := []suiai.Option{suiai.WithLogger(logger.Named("suiaictl"))}
	if sink != nil {
		opts = append(opts, suiai.WithJournal(sink))
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, suiai.WithMetricsRegisterer(a.registry))
	}

	sdk, err := suiai.New(ctx, suiai.Config{
		Network:      cfg.Network.Name,
		PackageID:    cfg.Network.PackageID,
		RPCURL:       cfg.Network.RPCURL,
		Identity:     id,
		GasBudget:    cfg.Network.GasBudget,
		NetworksFile: cfg.Network.NetworksFile,
		Timeout:      time.Duration(cfg.Network.TimeoutSeconds) * time.Second,
	}, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.sdk = sdk
	return a, nil
}

func (a *app) close() {
	if a == nil {
		return
	}
	if a.sdk != nil {
		a.sdk.Close()
	}
	if a.registry != nil && a.cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
			logger.L().Warn("写入指标文件失败", "path", a.cfg.Metrics.Textfile, "error", err)
		}
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logger.L().Warn("关闭提交日志失败", "error", err)
		}
	}
	_ = logger.Sync()
}

// identityFromEnv 优先使用助记词，其次使用私钥；两者都未设置时返回 nil。
func identityFromEnv(cfg config.IdentityConfig) (*suiai.Identity, error) {
	if phrase := strings.TrimSpace(os.Getenv(cfg.MnemonicEnv)); phrase != "" {
		return suiai.IdentityFromMnemonic(phrase)
	}
	if secret := strings.TrimSpace(os.Getenv(cfg.SecretKeyEnv)); secret != "" {
		return suiai.IdentityFromSecretKey(secret)
	}
	return nil, nil
}

// openJournal 根据配置创建提交日志，多个后端通过 Multi 合并。
func openJournal(ctx context.Context, cfg config.JournalConfig) (journal.Store, error) {
	multi := journal.NewMulti()
	switch cfg.Driver {
	case config.JournalNone:
	case config.JournalMemory:
		multi.Add(journal.NewMemoryStore(cfg.Capacity))
	case config.JournalRedis:
		store, err := journal.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		multi.Add(store)
	case config.JournalMySQL:
		store, err := journal.NewMySQLStore(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		multi.Add(store)
	default:
		return nil, fmt.Errorf("不支持的 journal.driver: %s", cfg.Driver)
	}
	if cfg.RabbitMQ != nil {
		publisher, err := journal.NewRabbitMQPublisher(*cfg.RabbitMQ)
		if err != nil {
			_ = multi.Close()
			return nil, err
		}
		multi.Add(publisher)
	}
	if multi.Len() == 0 {
		return nil, nil
	}
	return multi, nil
}
