package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tangzhangming/vela/internal/bytecode"
	"github.com/tangzhangming/vela/internal/objects"
	"github.com/tangzhangming/vela/internal/tiering"
)

// ============================================================================
// 合成热循环演示
// ============================================================================

// demoCompiler 演示用的编译服务：基线编译立即安装一段假代码
type demoCompiler struct {
	nextStart uintptr
}

func (c *demoCompiler) CompileBaseline(function *objects.Function,
	mode tiering.ExceptionMode) error {
	c.nextStart += 0x1000
	function.SetBaselineCode(objects.NewCode(
		objects.CodeKindBaseline, objects.NoBuiltinID, c.nextStart, 512))
	return nil
}

// demoFrames 演示用的帧来源：始终返回指定帧
type demoFrames struct {
	frame *objects.InterpretedFrame
}

func (f *demoFrames) Top() objects.Frame { return f.frame }

// hotLoopFunction 组装一个带回边的函数
func hotLoopFunction() *objects.Function {
	b := bytecode.NewBuilder()
	b.Emit(bytecode.OpZero)
	b.Emit(bytecode.OpStoreLocal, 0)
	loopHead := b.Offset()
	b.Emit(bytecode.OpLoadLocal, 0)
	b.Emit(bytecode.OpPush, 1)
	b.Emit(bytecode.OpAdd)
	b.Emit(bytecode.OpStoreLocal, 0)
	b.EmitJumpLoop(loopHead, 1)
	b.Emit(bytecode.OpReturn)

	shared := objects.NewSharedFunctionInfo("hotLoop", b.Build(), true)
	context := objects.NewNativeContext("demo")
	return objects.NewFunction(shared, context)
}

func runDemo(out io.Writer, log *zap.Logger) error {
	flags := tiering.DefaultFlags()
	flags.TraceOpt = true
	flags.TraceOSR = true
	// 演示用小预算，让升层在几十个 tick 内发生
	flags.TicksBeforeOptimization = 3
	flags.BytecodeSizeAllowancePerTick = 50

	compiler := &demoCompiler{}
	function := hotLoopFunction()
	frames := &demoFrames{
		frame: objects.NewInterpretedFrame(function, 0),
	}

	batch := tiering.NewBaselineBatchCompiler(compiler, log)
	defer batch.Stop()

	manager := tiering.NewManager(tiering.Options{
		Flags:    flags,
		Compiler: compiler,
		Frames:   frames,
		Tracer:   tiering.NewCodeTracer(out),
		Batch:    batch,
	})

	function.SetInterruptBudget(manager.InitialInterruptBudget())

	// 模拟解释器：回边消耗预算，下穿时触发 tick
	ticks := 0
	for step := 0; step < 2_000_000 && ticks < 12; step++ {
		if function.DecrementInterruptBudget(1) {
			ticks++
			manager.OnInterruptTick(function)
		}
		if function.IsMarkedForConcurrentOptimization() {
			// 顶层编译服务在后台完成，这里立即兑现
			function.ClearOptimizationMarker()
			function.SetOptimizedCode(objects.NewCode(
				objects.CodeKindTopTier, objects.NoBuiltinID, 0x900000, 2048))
			fmt.Fprintf(out, "[demo: optimized code installed after %d ticks]\n", ticks)
			break
		}
	}

	level := function.Shared().Bytecode().OSRLoopNestingLevel()
	fmt.Fprintf(out, "[demo: osr loop nesting level = %d]\n", level)

	return manager.DumpJSON(out)
}
