// Package pkg 实现 Vela 项目配置相关功能
package pkg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/tangzhangming/vela/internal/tiering"
)

// 常量定义
const (
	ConfigFileName = "vela.toml" // 配置文件名
)

// ProjectConfig 项目配置
type ProjectConfig struct {
	Package PackageInfo `toml:"package"`

	// Tiering 分层控制器配置，缺省项沿用默认值
	Tiering *TieringSection `toml:"tiering"`
}

// PackageInfo 包信息
type PackageInfo struct {
	// Name 包名
	Name string `toml:"name"`

	// Version 版本号（遵循语义化版本，如 1.0.0）
	Version string `toml:"version"`
}

// TieringSection vela.toml 里的 [tiering] 表
// 字段用指针区分"未写"与"写了零值"
type TieringSection struct {
	UseOptimizer                   *bool `toml:"use_optimizer"`
	UseBaseline                    *bool `toml:"use_baseline"`
	UseMidTier                     *bool `toml:"use_mid_tier"`
	UseOSR                         *bool `toml:"use_osr"`
	AlwaysOSR                      *bool `toml:"always_osr"`
	LazyFeedbackAllocation         *bool `toml:"lazy_feedback_allocation"`
	BaselineBatchCompilation       *bool `toml:"baseline_batch_compilation"`
	AllowUnsafeFunctionConstructor *bool `toml:"allow_unsafe_function_constructor"`
	TraceOpt                       *bool `toml:"trace_opt"`
	TraceOptVerbose                *bool `toml:"trace_opt_verbose"`
	TraceOSR                       *bool `toml:"trace_osr"`

	InterruptBudget                            *int `toml:"interrupt_budget"`
	InterruptBudgetForMidTier                  *int `toml:"interrupt_budget_for_mid_tier"`
	InterruptBudgetForFeedbackAllocation       *int `toml:"interrupt_budget_for_feedback_allocation"`
	InterruptBudgetFactorForFeedbackAllocation *int `toml:"interrupt_budget_factor_for_feedback_allocation"`
	TicksBeforeOptimization                    *int `toml:"ticks_before_optimization"`
	BytecodeSizeAllowancePerTick               *int `toml:"bytecode_size_allowance_per_tick"`
	MaxBytecodeSizeForEarlyOpt                 *int `toml:"max_bytecode_size_for_early_opt"`
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ProjectConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save 保存配置到文件
func (c *ProjectConfig) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// TieringFlags 在默认值之上套用 [tiering] 表的覆盖项
func (c *ProjectConfig) TieringFlags() tiering.Flags {
	flags := tiering.DefaultFlags()
	s := c.Tiering
	if s == nil {
		return flags
	}

	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	applyBool(&flags.UseOptimizer, s.UseOptimizer)
	applyBool(&flags.UseBaseline, s.UseBaseline)
	applyBool(&flags.UseMidTier, s.UseMidTier)
	applyBool(&flags.UseOSR, s.UseOSR)
	applyBool(&flags.AlwaysOSR, s.AlwaysOSR)
	applyBool(&flags.LazyFeedbackAllocation, s.LazyFeedbackAllocation)
	applyBool(&flags.BaselineBatchCompilation, s.BaselineBatchCompilation)
	applyBool(&flags.AllowUnsafeFunctionConstructor, s.AllowUnsafeFunctionConstructor)
	applyBool(&flags.TraceOpt, s.TraceOpt)
	applyBool(&flags.TraceOptVerbose, s.TraceOptVerbose)
	applyBool(&flags.TraceOSR, s.TraceOSR)

	applyInt(&flags.InterruptBudget, s.InterruptBudget)
	applyInt(&flags.InterruptBudgetForMidTier, s.InterruptBudgetForMidTier)
	applyInt(&flags.InterruptBudgetForFeedbackAllocation, s.InterruptBudgetForFeedbackAllocation)
	applyInt(&flags.InterruptBudgetFactorForFeedbackAllocation, s.InterruptBudgetFactorForFeedbackAllocation)
	applyInt(&flags.TicksBeforeOptimization, s.TicksBeforeOptimization)
	applyInt(&flags.BytecodeSizeAllowancePerTick, s.BytecodeSizeAllowancePerTick)
	applyInt(&flags.MaxBytecodeSizeForEarlyOpt, s.MaxBytecodeSizeForEarlyOpt)

	return flags
}

// FindConfigFile 从指定路径向上查找配置文件
// 返回配置文件的完整路径，找不到则返回空字符串
func FindConfigFile(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	var dir string
	if info.IsDir() {
		dir = startPath
	} else {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	// 向上查找
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// 已到达根目录
			return ""
		}
		dir = parent
	}
}
