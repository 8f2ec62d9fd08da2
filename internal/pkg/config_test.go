package pkg

import (
	"os"
	"path/filepath"
	"testing"
)

// ============================================================================
// 配置加载
// ============================================================================

const sampleConfig = `
[package]
name = "demo"
version = "0.1.0"

[tiering]
use_mid_tier = true
use_osr = false
ticks_before_optimization = 7
max_bytecode_size_for_early_opt = 64
`

func TestLoadConfigAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Package.Name != "demo" {
		t.Errorf("Expected package name demo, got %q", config.Package.Name)
	}

	flags := config.TieringFlags()
	if !flags.UseMidTier {
		t.Error("Expected use_mid_tier override")
	}
	if flags.UseOSR {
		t.Error("Expected use_osr override to false")
	}
	if flags.TicksBeforeOptimization != 7 {
		t.Errorf("Expected ticks_before_optimization 7, got %d", flags.TicksBeforeOptimization)
	}
	if flags.MaxBytecodeSizeForEarlyOpt != 64 {
		t.Errorf("Expected max_bytecode_size_for_early_opt 64, got %d",
			flags.MaxBytecodeSizeForEarlyOpt)
	}

	// 未覆盖的键保持默认值
	if !flags.UseOptimizer {
		t.Error("Expected default use_optimizer")
	}
	if flags.InterruptBudget != 132*1024 {
		t.Errorf("Expected default interrupt_budget, got %d", flags.InterruptBudget)
	}
}

func TestTieringFlagsWithoutSection(t *testing.T) {
	config := &ProjectConfig{}
	flags := config.TieringFlags()
	if !flags.UseOSR || !flags.UseBaseline {
		t.Error("Expected defaults without [tiering] section")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		t.Fatal(err)
	}

	found := FindConfigFile(nested)
	if found != path {
		t.Errorf("Expected %s, got %s", path, found)
	}
}
