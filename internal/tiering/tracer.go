package tiering

import (
	"fmt"
	"io"
)

// ============================================================================
// 代码追踪输出
// ============================================================================

// CodeTracer 诊断行的宿主输出流
// 输出是自由格式的诊断文本，不供程序解析
type CodeTracer struct {
	w io.Writer
}

// NewCodeTracer 创建追踪器
func NewCodeTracer(w io.Writer) *CodeTracer {
	if w == nil {
		w = io.Discard
	}
	return &CodeTracer{w: w}
}

// Printf 写一行诊断
func (t *CodeTracer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(t.w, format, args...)
}
