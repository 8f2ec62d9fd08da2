package builtins

import (
	"strings"
	"testing"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 测试辅助
// ============================================================================

func newInstalledTable() *Builtins {
	bt := New(NewEmbeddedBlob(0x100000))
	bt.InstallEmbeddedCode()
	bt.InitializeIsolateTables()
	return bt
}

// ============================================================================
// 目录
// ============================================================================

func TestMetadataCoversEveryID(t *testing.T) {
	seen := make(map[string]Builtin)
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		name := Name(b)
		if name == "" {
			t.Fatalf("Builtin %d has empty name", int(b))
		}
		if prev, dup := seen[name]; dup {
			t.Fatalf("Duplicate name %q for %d and %d", name, int(prev), int(b))
		}
		seen[name] = b
	}
	if len(seen) != BuiltinCount {
		t.Errorf("Expected %d records, got %d", BuiltinCount, len(seen))
	}
}

func TestKindDataAccessors(t *testing.T) {
	if got := StackParameterCount(BuiltinDataViewSetFloat64); got != 3 {
		t.Errorf("Expected 3 stack parameters, got %d", got)
	}
	if CppEntryOf(BuiltinIllegal) == 0 {
		t.Error("Expected non-zero native entry")
	}
	op, scale := BytecodeAndScaleOf(BuiltinJumpLoopWideHandler)
	if op.String() != "JumpLoop" || scale != 2 {
		t.Errorf("Expected (JumpLoop, Double), got (%v, %v)", op, scale)
	}
}

func TestKindDataAccessorPanicsOnMismatch(t *testing.T) {
	tests := []struct {
		name string
		call func()
	}{
		{"cpp entry of stub", func() { CppEntryOf(BuiltinToNumber) }},
		{"parameter count of native", func() { StackParameterCount(BuiltinIllegal) }},
		{"bytecode of js stub", func() { BytecodeAndScaleOf(BuiltinStringIndexOf) }},
		{"invalid id", func() { Name(Builtin(-1)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			tt.call()
		})
	}
}

// ============================================================================
// 内置表
// ============================================================================

func TestTableIdentity(t *testing.T) {
	bt := newInstalledTable()
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		code := bt.Code(b)
		if code.BuiltinID() != int(b) {
			t.Fatalf("Slot %s holds builtin id %d", Name(b), code.BuiltinID())
		}
		got, ok := bt.IsBuiltinHandle(bt.CodeHandle(b))
		if !ok || got != b {
			t.Fatalf("IsBuiltinHandle(%s) = (%d, %v)", Name(b), int(got), ok)
		}
	}
}

func TestIsBuiltinHandleRejectsForeignPointer(t *testing.T) {
	bt := newInstalledTable()
	foreign := objects.NewCode(objects.CodeKindBuiltin, 0, 0x100000, 64)
	if _, ok := bt.IsBuiltinHandle(foreign); ok {
		t.Error("Expected foreign pointer to be rejected")
	}
	if _, ok := bt.IsBuiltinHandle(nil); ok {
		t.Error("Expected nil handle to be rejected")
	}
}

func TestSetCodePreconditions(t *testing.T) {
	bt := New(NewEmbeddedBlob(0x100000))
	code := objects.NewCode(objects.CodeKindBuiltin, int(BuiltinToNumber), 0x500, 64)
	bt.SetCode(BuiltinToNumber, code)
	if got := bt.Code(BuiltinToNumber).InstructionStart(); got != 0x500 {
		t.Errorf("Expected installed start 0x500, got %#x", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for builtin id mismatch")
		}
	}()
	bt.SetCode(BuiltinToString, code)
}

func TestUninstalledSlotRead(t *testing.T) {
	bt := New(NewEmbeddedBlob(0x100000))
	defer func() {
		if recover() == nil {
			t.Error("Expected panic reading uninstalled slot")
		}
	}()
	bt.Code(BuiltinToNumber)
}

// ============================================================================
// 反向检索
// ============================================================================

func TestLookupRoundTrip(t *testing.T) {
	bt := newInstalledTable()
	blob := bt.EmbeddedBlob()
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		start := blob.InstructionStartOf(b)
		size := blob.InstructionSizeOf(b)
		for _, pc := range []uintptr{start, start + uintptr(size/2), start + uintptr(size-1)} {
			got, ok := bt.Lookup(pc)
			if !ok || got != b {
				t.Fatalf("Lookup(%#x) = (%d, %v), want %s", pc, int(got), ok, Name(b))
			}
		}
	}
}

func TestLookupMiss(t *testing.T) {
	bt := newInstalledTable()
	if _, ok := bt.Lookup(0x10); ok {
		t.Error("Expected miss below blob")
	}
}

func TestLookupLinearFallback(t *testing.T) {
	bt := newInstalledTable()
	// 在嵌入区之外重新安装一个槽位，只有线性扫描能找到它
	custom := objects.NewCode(objects.CodeKindBuiltin, int(BuiltinToNumber), 0x900000, 64)
	bt.SetCode(BuiltinToNumber, custom)

	got, ok := bt.Lookup(0x900010)
	if !ok || got != BuiltinToNumber {
		t.Fatalf("Expected linear fallback hit, got (%d, %v)", int(got), ok)
	}

	// 退出后不再允许线性扫描
	bt.TearDown()
	if _, ok := bt.Lookup(0x900010); ok {
		t.Error("Expected miss after tear-down")
	}
}

// ============================================================================
// 隔离实例入口表
// ============================================================================

func TestIsolateTables(t *testing.T) {
	bt := newInstalledTable()
	blob := bt.EmbeddedBlob()

	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		if got := bt.EntryOf(b); got != blob.InstructionStartOf(b) {
			t.Fatalf("Entry of %s = %#x, want %#x", Name(b), got, blob.InstructionStartOf(b))
		}
	}
	for b := BuiltinFirst; b <= BuiltinLastTier0; b++ {
		if got := bt.Tier0EntryOf(b); got != bt.EntryOf(b) {
			t.Fatalf("Tier0 entry mismatch for %s", Name(b))
		}
		if got := bt.Tier0Code(b).BuiltinID(); got != int(b) {
			t.Fatalf("Tier0 mirror of %s holds id %d", Name(b), got)
		}
	}
}

func TestTier0AccessorPanicsOutsidePrefix(t *testing.T) {
	bt := newInstalledTable()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for non-tier0 builtin")
		}
	}()
	bt.Tier0EntryOf(BuiltinToNumber)
}

// ============================================================================
// 变体选择
// ============================================================================

func TestCallFamilySelectors(t *testing.T) {
	bt := newInstalledTable()

	tests := []struct {
		name string
		code *objects.Code
		want Builtin
	}{
		{"call function null", bt.CallFunction(ReceiverIsNullOrUndefined),
			BuiltinCallFunctionReceiverIsNullOrUndefined},
		{"call function not null", bt.CallFunction(ReceiverIsNotNullOrUndefined),
			BuiltinCallFunctionReceiverIsNotNullOrUndefined},
		{"call function any", bt.CallFunction(ReceiverIsAny),
			BuiltinCallFunctionReceiverIsAny},
		{"call any", bt.Call(ReceiverIsAny), BuiltinCallReceiverIsAny},
		{"to primitive default", bt.NonPrimitiveToPrimitive(ToPrimitiveDefault),
			BuiltinNonPrimitiveToPrimitiveDefault},
		{"to primitive number", bt.NonPrimitiveToPrimitive(ToPrimitiveNumber),
			BuiltinNonPrimitiveToPrimitiveNumber},
		{"to primitive string", bt.NonPrimitiveToPrimitive(ToPrimitiveString),
			BuiltinNonPrimitiveToPrimitiveString},
		{"ordinary number", bt.OrdinaryToPrimitive(OrdinaryToPrimitiveHintNumber),
			BuiltinOrdinaryToPrimitiveNumber},
		{"ordinary string", bt.OrdinaryToPrimitive(OrdinaryToPrimitiveHintString),
			BuiltinOrdinaryToPrimitiveString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code.BuiltinID() != int(tt.want) {
				t.Errorf("Expected %s, got builtin id %d", Name(tt.want), tt.code.BuiltinID())
			}
		})
	}
}

func TestSelectorPanicsOnUnknownEnumerant(t *testing.T) {
	bt := newInstalledTable()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown receiver mode")
		}
	}()
	bt.CallFunction(ConvertReceiverMode(99))
}

// ============================================================================
// 续体偏移
// ============================================================================

func TestContinuationBijection(t *testing.T) {
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		switch KindOf(b) {
		case KindJSStub, KindStub, KindStatefulStub:
			offset := ContinuationBytecodeOffset(b)
			if got := BuiltinFromContinuationOffset(offset); got != b {
				t.Fatalf("Round trip for %s gave %s", Name(b), Name(got))
			}
			if offset < FirstContinuationOffset {
				t.Fatalf("Offset %d below base", offset)
			}
		}
	}
}

func TestContinuationPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for non-stub builtin")
		}
	}()
	ContinuationBytecodeOffset(BuiltinLoadFieldHandler)
}

// ============================================================================
// 栈回溯显示名
// ============================================================================

func TestNameForStackTrace(t *testing.T) {
	tests := []struct {
		builtin Builtin
		want    string
	}{
		{BuiltinStringIndexOf, "String.indexOf"},
		{BuiltinNumberToString, "Number.toString"},
		{BuiltinDataViewGetBigInt64, "DataView.getBigInt64"},
		{BuiltinDataViewSetUint16, "DataView.setUint16"},
		{BuiltinToNumber, ""},
		{BuiltinCallReceiverIsAny, ""},
	}
	for _, tt := range tests {
		if got := NameForStackTrace(tt.builtin); got != tt.want {
			t.Errorf("NameForStackTrace(%s) = %q, want %q", Name(tt.builtin), got, tt.want)
		}
	}
}

// ============================================================================
// 代码创建事件
// ============================================================================

type recordingLogger struct {
	tags  []string
	names []string
}

func (l *recordingLogger) CodeCreateEvent(tag string, code *objects.Code, name string) {
	l.tags = append(l.tags, tag)
	l.names = append(l.names, name)
}

func TestEmitCodeCreateEvents(t *testing.T) {
	bt := newInstalledTable()
	logger := &recordingLogger{}
	bt.EmitCodeCreateEvents(logger)

	if len(logger.names) != BuiltinCount {
		t.Fatalf("Expected %d events, got %d", BuiltinCount, len(logger.names))
	}

	handlers := 0
	for i, tag := range logger.tags {
		if tag == CodeTagBytecodeHandler {
			handlers++
			if !strings.Contains(logger.names[i], ".") {
				t.Errorf("Expected formatted (bytecode, scale) name, got %q", logger.names[i])
			}
		}
	}
	wantHandlers := int(BuiltinLast-BuiltinFirstBytecodeHandler) + 1
	if handlers != wantHandlers {
		t.Errorf("Expected %d bytecode-handler events, got %d", wantHandlers, handlers)
	}

	// 尾部事件按 (操作码, 档位) 命名
	last := logger.names[len(logger.names)-1]
	if last != "Return.Quadruple" {
		t.Errorf("Expected last event Return.Quadruple, got %q", last)
	}
}

// ============================================================================
// 链接描述与动态函数门禁
// ============================================================================

func TestLinkageDescriptors(t *testing.T) {
	if !HasJSLinkage(BuiltinStringIndexOf) || !HasJSLinkage(BuiltinIllegal) {
		t.Error("Expected JS linkage for native and JS stubs")
	}
	if HasJSLinkage(BuiltinToNumber) {
		t.Error("Did not expect JS linkage for stateful stub")
	}
	if got := LinkageDescriptorFor(BuiltinLoadFieldHandler); got != LinkageHandlerCall {
		t.Errorf("Expected handler linkage, got %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for bytecode handler linkage query")
		}
	}()
	LinkageDescriptorFor(BuiltinJumpLoopHandler)
}

func TestAllowDynamicFunction(t *testing.T) {
	a := objects.NewNativeContext("a")
	b := objects.NewNativeContext("b")
	sameAsA := objects.NewNativeContext("a")

	if !AllowDynamicFunction(true, a, b) {
		t.Error("Expected unsafe flag to allow everything")
	}
	if !AllowDynamicFunction(false, nil, b) {
		t.Error("Expected nil last-entered context to allow")
	}
	if !AllowDynamicFunction(false, a, a) || !AllowDynamicFunction(false, a, sameAsA) {
		t.Error("Expected same-token access to allow")
	}
	if AllowDynamicFunction(false, a, b) {
		t.Error("Did not expect cross-token access")
	}
}
