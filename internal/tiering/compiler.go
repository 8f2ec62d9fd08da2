package tiering

import "github.com/tangzhangming/vela/internal/objects"

// ============================================================================
// 编译服务接口
// ============================================================================

// ExceptionMode 同步编译失败时挂起异常的处置方式
type ExceptionMode uint8

const (
	KeepException  ExceptionMode = iota // 异常留给调用方
	ClearException                      // 编译失败时清除挂起异常
)

// Compiler 外部编译服务
// 控制器只发起请求，从不等待后台编译完成
type Compiler interface {
	// CompileBaseline 把函数编译到基线层
	// mode 为 ClearException 时失败不得留下挂起异常
	CompileBaseline(function *objects.Function, mode ExceptionMode) error
}

// FrameSource 执行线程当前栈顶帧的来源
// tick 触发时控制器由此取到触发回边所在的帧
type FrameSource interface {
	Top() objects.Frame
}
