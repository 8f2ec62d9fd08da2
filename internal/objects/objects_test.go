package objects

import (
	"testing"

	"github.com/tangzhangming/vela/internal/bytecode"
)

// ============================================================================
// 测试辅助
// ============================================================================

func newTestFunction(name string) *Function {
	b := bytecode.NewBuilder()
	b.Emit(bytecode.OpZero)
	loopHead := b.Offset()
	b.Emit(bytecode.OpLoadLocal, 0)
	b.EmitJumpLoop(loopHead, 1)
	b.Emit(bytecode.OpReturn)
	shared := NewSharedFunctionInfo(name, b.Build(), true)
	return NewFunction(shared, NewNativeContext("test"))
}

// ============================================================================
// 层级推导
// ============================================================================

func TestActiveTierDerivation(t *testing.T) {
	fn := newTestFunction("tiers")

	if _, ok := fn.GetActiveTier(); ok {
		t.Fatal("Expected no active tier without feedback vector")
	}

	fn.CreateAndAttachFeedbackVector()
	kind, ok := fn.GetActiveTier()
	if !ok || kind != CodeKindInterpreted {
		t.Fatalf("Expected interpreted tier, got %v (%v)", kind, ok)
	}

	fn.SetBaselineCode(NewCode(CodeKindBaseline, NoBuiltinID, 0x1000, 128))
	if !fn.ActiveTierIsBaseline() {
		t.Error("Expected baseline tier after installing baseline code")
	}

	fn.SetOptimizedCode(NewCode(CodeKindTopTier, NoBuiltinID, 0x2000, 512))
	kind, _ = fn.GetActiveTier()
	if kind != CodeKindTopTier {
		t.Errorf("Expected top tier, got %v", kind)
	}
}

func TestMarkForOptimization(t *testing.T) {
	fn := newTestFunction("mark")
	fn.MarkForOptimization(CodeKindTopTier, ConcurrencyModeConcurrent)

	if !fn.IsMarkedForConcurrentOptimization() {
		t.Error("Expected concurrent marking")
	}
	if fn.IsMarkedForOptimization() {
		t.Error("Did not expect non-concurrent marking")
	}
	kind, marked := fn.MarkedKind()
	if !marked || kind != CodeKindTopTier {
		t.Errorf("Expected marked top tier, got %v (%v)", kind, marked)
	}

	fn.ClearOptimizationMarker()
	if _, marked := fn.MarkedKind(); marked {
		t.Error("Expected marker cleared")
	}
}

func TestMarkForOptimizationPanicsWhenDisabled(t *testing.T) {
	fn := newTestFunction("disabled")
	fn.Shared().DisableOptimization()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when marking a disabled function")
		}
	}()
	fn.MarkForOptimization(CodeKindTopTier, ConcurrencyModeConcurrent)
}

// ============================================================================
// 反馈向量
// ============================================================================

func TestProfilerTicksSaturate(t *testing.T) {
	v := NewFeedbackVector()
	for i := 0; i < MaxProfilerTicks+100; i++ {
		v.SaturatingIncrementProfilerTicks()
	}
	if got := v.ProfilerTicks(); got != MaxProfilerTicks {
		t.Errorf("Expected saturation at %d, got %d", MaxProfilerTicks, got)
	}
}

func TestInvocationCount(t *testing.T) {
	v := NewFeedbackVector()
	v.SetInvocationCount(1)
	v.IncrementInvocationCount()
	if got := v.InvocationCount(); got != 2 {
		t.Errorf("Expected invocation count 2, got %d", got)
	}
}

func TestInterruptBudgetUnderflow(t *testing.T) {
	fn := newTestFunction("budget")
	fn.SetInterruptBudget(3)
	if fn.DecrementInterruptBudget(2) {
		t.Error("Did not expect underflow at budget 1")
	}
	if !fn.DecrementInterruptBudget(2) {
		t.Error("Expected underflow")
	}
}

// ============================================================================
// OSR 代码缓存
// ============================================================================

func TestOSRCacheInsertAndQuery(t *testing.T) {
	fn := newTestFunction("cache")
	cache := fn.Context().OSRCodeCache()
	sfi := fn.Shared()

	if sfi.OSRCodeCacheState() != OSRNotCached {
		t.Fatal("Expected not-cached state initially")
	}

	// 回边在 Zero(1 字节) + LoadLocal(3 字节) 之后
	jumpOffset := 4
	cache.Insert(sfi, jumpOffset)
	cache.Insert(sfi, jumpOffset) // 重复插入被忽略

	if sfi.OSRCodeCacheState() != OSRCachedWithEntries {
		t.Error("Expected cached-with-entries state")
	}
	offsets := cache.GetBytecodeOffsetsFromSFI(sfi)
	if len(offsets) != 1 || offsets[0] != jumpOffset {
		t.Errorf("Expected offsets [%d], got %v", jumpOffset, offsets)
	}

	cache.Evict(sfi)
	if sfi.OSRCodeCacheState() != OSRNotCached {
		t.Error("Expected not-cached state after evict")
	}
}

func TestOSRCacheRejectsNonJumpLoop(t *testing.T) {
	fn := newTestFunction("bad-cache")

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for non-JumpLoop offset")
		}
	}()
	fn.Context().OSRCodeCache().Insert(fn.Shared(), 0)
}

// ============================================================================
// 上下文访问控制
// ============================================================================

func TestNativeContextMayAccess(t *testing.T) {
	a := NewNativeContext("token-a")
	b := NewNativeContext("token-a")
	c := NewNativeContext("token-c")

	if !a.MayAccess(a) || !a.MayAccess(b) {
		t.Error("Expected access within same token")
	}
	if a.MayAccess(c) {
		t.Error("Did not expect cross-token access")
	}
}

// ============================================================================
// 代码对象
// ============================================================================

func TestCodeContains(t *testing.T) {
	code := NewCode(CodeKindBuiltin, 3, 0x1000, 64)
	if !code.Contains(0x1000) || !code.Contains(0x103f) {
		t.Error("Expected pc inside instruction range")
	}
	if code.Contains(0xfff) || code.Contains(0x1040) {
		t.Error("Did not expect pc outside instruction range")
	}
}
