package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tangzhangming/vela/internal/builtins"
	"github.com/tangzhangming/vela/internal/pkg"
	"github.com/tangzhangming/vela/internal/tiering"
)

const (
	Version = "0.1.0"
)

func main() {
	args := os.Args[1:]

	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]

	switch command {
	case "builtins":
		cmdBuiltins(args[1:])
	case "config":
		cmdConfig(args[1:])
	case "demo":
		cmdDemo(args[1:])
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Vela VM tiering toolkit")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vela builtins          列出内置表（编号、种类、名称、指令大小）")
	fmt.Println("  vela config [path]     显示生效的分层配置（可被 vela.toml 覆盖）")
	fmt.Println("  vela demo              驱动一个合成热循环并输出分层统计")
	fmt.Println("  vela version           显示版本")
}

func cmdVersion() {
	fmt.Printf("vela %s\n", Version)
}

// cmdBuiltins 列出内置表
func cmdBuiltins(args []string) {
	blob := builtins.NewEmbeddedBlob(0x100000)
	table := builtins.New(blob)
	table.InstallEmbeddedCode()
	table.InitializeIsolateTables()

	for b := builtins.BuiltinFirst; b <= builtins.BuiltinLast; b++ {
		tier0 := " "
		if builtins.IsTier0(b) {
			tier0 = "0"
		}
		fmt.Printf("%3d %s %-15s %-42s %4d\n",
			builtins.ToInt(b), tier0, builtins.KindNameOf(b), builtins.Name(b),
			table.Code(b).InstructionSize())
	}
}

// cmdConfig 显示生效的分层配置
func cmdConfig(args []string) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}

	flags := tiering.DefaultFlags()
	if path := pkg.FindConfigFile(start); path != "" {
		config, err := pkg.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", path, err)
			os.Exit(1)
		}
		flags = config.TieringFlags()
		fmt.Printf("# %s\n", path)
	} else {
		fmt.Println("# defaults (no vela.toml found)")
	}

	fmt.Printf("use_optimizer                  = %v\n", flags.UseOptimizer)
	fmt.Printf("use_baseline                   = %v\n", flags.UseBaseline)
	fmt.Printf("use_mid_tier                   = %v\n", flags.UseMidTier)
	fmt.Printf("use_osr                        = %v\n", flags.UseOSR)
	fmt.Printf("lazy_feedback_allocation       = %v\n", flags.LazyFeedbackAllocation)
	fmt.Printf("baseline_batch_compilation     = %v\n", flags.BaselineBatchCompilation)
	fmt.Printf("allow_unsafe_function_constructor = %v\n", flags.AllowUnsafeFunctionConstructor)
	fmt.Printf("interrupt_budget               = %d\n", flags.InterruptBudget)
	fmt.Printf("interrupt_budget_for_mid_tier  = %d\n", flags.InterruptBudgetForMidTier)
	fmt.Printf("ticks_before_optimization      = %d\n", flags.TicksBeforeOptimization)
	fmt.Printf("bytecode_size_allowance_per_tick = %d\n", flags.BytecodeSizeAllowancePerTick)
	fmt.Printf("max_bytecode_size_for_early_opt  = %d\n", flags.MaxBytecodeSizeForEarlyOpt)
}

// cmdDemo 驱动一个合成热循环，展示升层轨迹
func cmdDemo(args []string) {
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := runDemo(os.Stdout, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
