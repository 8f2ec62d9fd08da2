package tiering

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
)

// ============================================================================
// 控制器统计
// ============================================================================

// Stats 控制器统计
// 只在执行线程上变动，读快照无需加锁
type Stats struct {
	TicksHandled             int64 `json:"ticks_handled"`
	FeedbackVectorsAllocated int64 `json:"feedback_vectors_allocated"`
	BaselineEnqueued         int64 `json:"baseline_enqueued"`
	BaselineCompiledSync     int64 `json:"baseline_compiled_sync"`
	BaselineFailures         int64 `json:"baseline_failures"`
	OptimizationsRequested   int64 `json:"optimizations_requested"`
	SmallFunctionRequests    int64 `json:"small_function_requests"`
	OSRArmed                 int64 `json:"osr_armed"`
}

// Stats 统计快照
func (m *Manager) Stats() Stats { return m.stats }

// DumpJSON 把统计快照写成 JSON
func (m *Manager) DumpJSON(w io.Writer) error {
	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return fmt.Errorf("tiering: marshal stats: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("tiering: write stats: %w", err)
	}
	return nil
}
