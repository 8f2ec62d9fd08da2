package builtins

import (
	"fmt"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 链接描述
// ============================================================================

// LinkageDescriptor 调用一个内置时的链接约定
type LinkageDescriptor uint8

const (
	LinkageJSTrampoline LinkageDescriptor = iota // 脚本调用约定（经适配器）
	LinkageStubCall                              // 桩调用约定
	LinkageStatefulStubCall                      // 带状态的桩调用约定
	LinkageHandlerCall                           // 内联缓存处理器约定
	LinkageNone                                  // 不可直接调用
)

// LinkageDescriptorFor 内置的链接描述
// 字节码处理器没有调用约定，询问它是编程错误
func LinkageDescriptorFor(b Builtin) LinkageDescriptor {
	switch KindOf(b) {
	case KindNative, KindJSStub:
		return LinkageJSTrampoline
	case KindStub:
		return LinkageStubCall
	case KindStatefulStub:
		return LinkageStatefulStubCall
	case KindHandler:
		return LinkageHandlerCall
	case KindASM:
		return LinkageNone
	case KindBytecodeHandler:
		panic(fmt.Sprintf("builtins: %s has no call linkage", Name(b)))
	}
	panic(fmt.Sprintf("builtins: unknown kind %d", KindOf(b)))
}

// HasJSLinkage 是否按脚本调用约定进入
func HasJSLinkage(b Builtin) bool {
	return LinkageDescriptorFor(b) == LinkageJSTrampoline
}

// ============================================================================
// 动态函数构造门禁
// ============================================================================

// AllowDynamicFunction 是否允许当前上下文动态构造函数
// allowUnsafe 放行一切；否则要求最近进入的上下文能访问目标上下文
func AllowDynamicFunction(allowUnsafe bool, lastEntered, target *objects.NativeContext) bool {
	if allowUnsafe {
		return true
	}
	if lastEntered == nil {
		return true
	}
	if lastEntered == target {
		return true
	}
	return lastEntered.MayAccess(target)
}
