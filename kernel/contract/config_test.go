package contract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultContractConfig(t *testing.T) {
	cfg := DefaultContractConfig()
	ceiling := cfg.CostCeiling()
	if ceiling.Runtime <= 0 || ceiling.ReadCnt <= 0 || ceiling.WriteCnt <= 0 {
		t.Fatalf("bad default ceiling: %+v", ceiling)
	}
	n, err := cfg.MemoryCeilingBytes()
	if err != nil {
		t.Fatal(err)
	}
	if n != 100*1024*1024 {
		t.Fatalf("expect 100m ceiling, got %d", n)
	}
}

func TestLoadContractConfig(t *testing.T) {
	content := `
limitRuntime: 1000
limitReadCnt: 10
memoryCeiling: 4k
maxCallDepth: 8
network: mainnet
`
	path := filepath.Join(t.TempDir(), "contract.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadContractConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LimitRuntime != 1000 || cfg.LimitReadCnt != 10 {
		t.Fatalf("limits not loaded: %+v", cfg)
	}
	// unset fields keep their defaults
	if cfg.LimitWriteCnt != DefaultContractConfig().LimitWriteCnt {
		t.Fatalf("expect default write count, got %d", cfg.LimitWriteCnt)
	}
	if cfg.MaxCallDepth != 8 || cfg.Network != "mainnet" {
		t.Fatalf("bad config: %+v", cfg)
	}
	n, err := cfg.MemoryCeilingBytes()
	if err != nil {
		t.Fatal(err)
	}
	if n != 4096 {
		t.Fatalf("expect 4096, got %d", n)
	}
}

func TestLoadContractConfigMissingFile(t *testing.T) {
	if _, err := LoadContractConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expect error for missing config file")
	}
}

func TestBadMemoryCeiling(t *testing.T) {
	cfg := DefaultContractConfig()
	cfg.MemoryCeiling = "lots"
	if _, err := cfg.MemoryCeilingBytes(); err == nil {
		t.Fatal("expect parse error")
	}
}
