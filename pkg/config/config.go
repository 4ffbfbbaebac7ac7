package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file
const (
	EnvRPCURL  = "HARNESS_RPC_URL"
	EnvForkURL = "HARNESS_FORK_URL"
)

// Config represents the harness configuration
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Accounts  AccountsConfig  `yaml:"accounts"`
	Contracts ContractsConfig `yaml:"contracts"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Vault     VaultConfig     `yaml:"vault"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Amounts   AmountsConfig   `yaml:"amounts"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig contains dev node connection settings
type NodeConfig struct {
	RPCURL string `yaml:"rpc_url" default:"http://localhost:8545" validate:"required"`
	// Namespace selects the cheatcode prefix, e.g. anvil_impersonateAccount.
	Namespace     string          `yaml:"namespace" default:"anvil" validate:"oneof=anvil hardhat"`
	TxTimeout     time.Duration   `yaml:"tx_timeout" default:"60s"`
	FundGas       bool            `yaml:"fund_gas" default:"true"`
	GasBalanceWei string          `yaml:"gas_balance_wei" default:"100000000000000000000" validate:"numeric"`
	Container     ContainerConfig `yaml:"container"`
}

// ContainerConfig controls starting a forked Anvil node in Docker
type ContainerConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Image          string        `yaml:"image" default:"ghcr.io/foundry-rs/foundry:stable"`
	ForkURL        string        `yaml:"fork_url" validate:"required_if=Enabled true"`
	ForkBlock      uint64        `yaml:"fork_block"`
	ChainID        uint64        `yaml:"chain_id" default:"250"`
	StartupTimeout time.Duration `yaml:"startup_timeout" default:"2m"`
}

// AccountsConfig maps roster roles to indexes into the node's unlocked accounts
type AccountsConfig struct {
	Gov        int `yaml:"gov" default:"0" validate:"min=0"`
	Rewards    int `yaml:"rewards" default:"1" validate:"min=0"`
	Guardian   int `yaml:"guardian" default:"2" validate:"min=0"`
	Management int `yaml:"management" default:"3" validate:"min=0"`
	Strategist int `yaml:"strategist" default:"4" validate:"min=0"`
	Keeper     int `yaml:"keeper" default:"5" validate:"min=0"`
	// User shares the keeper slot unless configured otherwise.
	User int `yaml:"user" default:"5" validate:"min=0"`
}

// ContractsConfig holds the pinned on-chain addresses
type ContractsConfig struct {
	Token      string `yaml:"token" default:"0x049d68029688eabf473097a2fc38ef61633a3c7a" validate:"required,eth_addr"`
	TokenWhale string `yaml:"token_whale" default:"0x3e4a7b48c03636dc9f5da7c3d54bf8326f02c8e0" validate:"required,eth_addr"`
	Reserve    string `yaml:"reserve" default:"0xd551234ae421e3bcba99a0da6d736074f22192ff" validate:"required,eth_addr"`
	WETH       string `yaml:"weth" default:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2" validate:"required,eth_addr"`
	CurvePool  string `yaml:"curve_pool" default:"0xa42Bd395F183726d1a8774cFA795771F8ACFD777" validate:"required,eth_addr"`
}

// ArtifactsConfig points at compiled contract artifacts
type ArtifactsConfig struct {
	Vault    string `yaml:"vault" default:"build/contracts/Vault.json" validate:"required"`
	Strategy string `yaml:"strategy" default:"build/contracts/FusdtCurveIce.json" validate:"required"`
}

// VaultConfig contains vault initialization parameters
type VaultConfig struct {
	NameOverride   string `yaml:"name_override"`
	SymbolOverride string `yaml:"symbol_override"`
	// DepositLimit is a base-10 integer; "max" means 2^256-1.
	DepositLimit string `yaml:"deposit_limit" default:"max"`
}

// StrategyConfig contains strategy construction and registration parameters
type StrategyConfig struct {
	InitParam         string `yaml:"init_param" default:"2000000000" validate:"numeric"`
	DebtRatio         int64  `yaml:"debt_ratio" default:"10000" validate:"min=0,max=10000"`
	MinDebtPerHarvest string `yaml:"min_debt_per_harvest" default:"0"`
	MaxDebtPerHarvest string `yaml:"max_debt_per_harvest" default:"max"`
	PerformanceFee    int64  `yaml:"performance_fee" default:"1000" validate:"min=0,max=10000"`
}

// AmountsConfig holds scenario amounts in whole token units
type AmountsConfig struct {
	FundingUnits   string  `yaml:"funding_units" default:"10000" validate:"required"`
	DepositUnits   string  `yaml:"deposit_units" default:"1000" validate:"required"`
	RelativeApprox float64 `yaml:"relative_approx" default:"0.00001" validate:"gt=0"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// Default returns a configuration populated only with defaults
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from file and environment variables.
// An empty path yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvRPCURL); v != "" {
		cfg.Node.RPCURL = v
	}
	if v := os.Getenv(EnvForkURL); v != "" {
		cfg.Node.Container.ForkURL = v
	}
}

var validate = validator.New()

// Validate checks struct-level constraints on the configuration
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s is invalid (%s)", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}
