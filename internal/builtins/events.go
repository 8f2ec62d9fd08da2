package builtins

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/vela/internal/bytecode"
	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 代码创建事件
// ============================================================================

// 事件标签
const (
	CodeTagBuiltin         = "Builtin"
	CodeTagBytecodeHandler = "BytecodeHandler"
)

// CodeEventLogger 代码创建事件的接收方
type CodeEventLogger interface {
	CodeCreateEvent(tag string, code *objects.Code, name string)
}

// EmitCodeCreateEvents 日志开启时一次性遍历全表补发事件
// 非字节码处理器按内置名上报；字节码处理器尾部按 (操作码, 档位) 格式化命名
func (bt *Builtins) EmitCodeCreateEvents(logger CodeEventLogger) {
	if logger == nil {
		return
	}

	b := BuiltinFirst
	for ; b < BuiltinFirstBytecodeHandler; b++ {
		logger.CodeCreateEvent(CodeTagBuiltin, bt.Code(b), Name(b))
	}

	for ; b <= BuiltinLast; b++ {
		op, scale := BytecodeAndScaleOf(b)
		logger.CodeCreateEvent(CodeTagBytecodeHandler, bt.Code(b),
			bytecode.FormatWithScale(op, scale))
	}
}

// ============================================================================
// zap 日志接收方
// ============================================================================

// ZapCodeEventLogger 把代码创建事件写到结构化日志
type ZapCodeEventLogger struct {
	log *zap.Logger
}

// NewZapCodeEventLogger 创建接收方
func NewZapCodeEventLogger(log *zap.Logger) *ZapCodeEventLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapCodeEventLogger{log: log}
}

func (l *ZapCodeEventLogger) CodeCreateEvent(tag string, code *objects.Code, name string) {
	l.log.Info("code-create",
		zap.String("tag", tag),
		zap.String("name", name),
		zap.Uintptr("start", code.InstructionStart()),
		zap.Int("size", code.InstructionSize()),
	)
}
