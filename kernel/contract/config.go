package contract

import (
	"github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ContractConfig carries the engine knobs loaded from the environment
// config file.
type ContractConfig struct {
	// LimitRuntime etc. are the per-block cost ceilings.
	LimitRuntime  int64 `yaml:"limitRuntime,omitempty"`
	LimitReadCnt  int64 `yaml:"limitReadCnt,omitempty"`
	LimitReadLen  int64 `yaml:"limitReadLen,omitempty"`
	LimitWriteCnt int64 `yaml:"limitWriteCnt,omitempty"`
	LimitWriteLen int64 `yaml:"limitWriteLen,omitempty"`
	// MemoryCeiling is a human readable byte size, e.g. "100m".
	MemoryCeiling string `yaml:"memoryCeiling,omitempty"`
	// MaxCallDepth bounds nested contract calls.
	MaxCallDepth int `yaml:"maxCallDepth,omitempty"`
	// Network selects the principal validation epoch, "mainnet" or
	// "testnet".
	Network string `yaml:"network,omitempty"`
}

const (
	defMemoryCeiling = "100m"
	defMaxCallDepth  = 64
)

// DefaultContractConfig returns the ceilings used when no config file
// overrides them.
func DefaultContractConfig() *ContractConfig {
	return &ContractConfig{
		LimitRuntime:  5_000_000_000,
		LimitReadCnt:  15_000,
		LimitReadLen:  100_000_000,
		LimitWriteCnt: 15_000,
		LimitWriteLen: 15_000_000,
		MemoryCeiling: defMemoryCeiling,
		MaxCallDepth:  defMaxCallDepth,
		Network:       "testnet",
	}
}

// LoadContractConfig reads the yaml config at cfgFile over the defaults.
func LoadContractConfig(cfgFile string) (*ContractConfig, error) {
	cfg := DefaultContractConfig()

	v := viper.New()
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read contract config failed. path: %s", cfgFile)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal contract config failed. path: %s", cfgFile)
	}
	return cfg, nil
}

// CostCeiling flattens the configured limits into a Limits vector.
func (c *ContractConfig) CostCeiling() Limits {
	return Limits{
		Runtime:  c.LimitRuntime,
		ReadCnt:  c.LimitReadCnt,
		ReadLen:  c.LimitReadLen,
		WriteCnt: c.LimitWriteCnt,
		WriteLen: c.LimitWriteLen,
	}
}

// MemoryCeilingBytes parses the configured memory ceiling.
func (c *ContractConfig) MemoryCeilingBytes() (int64, error) {
	n, err := units.RAMInBytes(c.MemoryCeiling)
	if err != nil {
		return 0, errors.Wrapf(err, "parse memory ceiling %q", c.MemoryCeiling)
	}
	return n, nil
}
