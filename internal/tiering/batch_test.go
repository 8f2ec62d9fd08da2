package tiering

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 基线批量编译
// ============================================================================

// countingCompiler 线程安全的编译服务桩
type countingCompiler struct {
	mu       sync.Mutex
	compiled []string
	fail     map[string]bool
}

func (c *countingCompiler) CompileBaseline(function *objects.Function,
	mode ExceptionMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := function.Shared().Name()
	if c.fail[name] {
		return errors.New("compile failed: " + name)
	}
	c.compiled = append(c.compiled, name)
	return nil
}

func (c *countingCompiler) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.compiled...)
}

func TestBatchCompilesEnqueuedFunctions(t *testing.T) {
	compiler := &countingCompiler{}
	batch := NewBaselineBatchCompiler(compiler, zap.NewNop())

	fns := []*objects.Function{
		newLoopFunction("batch-a", 40, true),
		newLoopFunction("batch-b", 60, true),
		newLoopFunction("batch-c", 80, true),
	}
	for _, fn := range fns {
		batch.EnqueueFunction(fn)
	}
	batch.Stop()

	names := compiler.names()
	if len(names) != 3 {
		t.Fatalf("Expected 3 compiled functions, got %d (%v)", len(names), names)
	}
	stats := batch.Stats()
	if stats.Enqueued != 3 || stats.Compiled != 3 || stats.Failed != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestBatchAggregatesFailures(t *testing.T) {
	compiler := &countingCompiler{fail: map[string]bool{"bad": true}}
	batch := NewBaselineBatchCompiler(compiler, zap.NewNop())

	batch.EnqueueFunction(newLoopFunction("good", 40, true))
	batch.EnqueueFunction(newLoopFunction("bad", 40, true))
	batch.Stop()

	stats := batch.Stats()
	if stats.Compiled != 1 {
		t.Errorf("Expected 1 compiled, got %d", stats.Compiled)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failed)
	}
}

func TestBatchSkipsFunctionsAlreadyAtBaseline(t *testing.T) {
	compiler := &countingCompiler{}
	batch := NewBaselineBatchCompiler(compiler, zap.NewNop())

	fn := newLoopFunction("already", 40, true)
	fn.CreateAndAttachFeedbackVector()
	fn.SetBaselineCode(objects.NewCode(
		objects.CodeKindBaseline, objects.NoBuiltinID, 0x3000, 128))

	batch.EnqueueFunction(fn)
	batch.Stop()

	if names := compiler.names(); len(names) != 0 {
		t.Errorf("Expected no compiles, got %v", names)
	}
}

func TestBatchWeightThresholdFlushes(t *testing.T) {
	compiler := &countingCompiler{}
	batch := NewBaselineBatchCompiler(compiler, zap.NewNop())

	// 单个函数就超过批次阈值，无需 Stop 也会下发
	batch.EnqueueFunction(newLoopFunction("heavy", defaultBatchWeightThreshold+64, true))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(compiler.names()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if names := compiler.names(); len(names) != 1 {
		t.Errorf("Expected threshold flush, got %v", names)
	}
	batch.Stop()
}
