// internal/history/history.go
// Package history 维护画布快照栈,支撑跨端撤销/重做。
package history

// Snapshot 画布在某一时刻的完整位图编码(通常为 data URL 字节)。
type Snapshot []byte

// UndoRedo 描述当前栈位可执行的动作。
type UndoRedo interface {
	CanUndo() bool
	CanRedo() bool
}

// History 线性快照历史,step 指向当前画布对应的快照下标。
// 非并发安全,调用方应在单一事件循环内使用。
type History struct {
	snapshots []Snapshot
	step      int
}

// New 创建空历史,step 为 -1 表示尚无任何快照。
func New() *History {
	return &History{step: -1}
}

// Push 追加一个新快照并将 step 指向它。
// 若当前处于回退状态(step 不在栈顶),先截断 redo 尾部:
// 新的绘制动作会使此前的重做分支永久失效。
func (h *History) Push(s Snapshot) {
	if h.step < len(h.snapshots)-1 {
		h.snapshots = h.snapshots[:h.step+1]
	}
	cp := make(Snapshot, len(s))
	copy(cp, s)
	h.snapshots = append(h.snapshots, cp)
	h.step = len(h.snapshots) - 1
}

// Undo 将 step 回退一格并返回对应快照。
// 已在栈底时不移动,返回 (nil, false)。
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.step--
	return h.snapshots[h.step], true
}

// Redo 将 step 前进一格并返回对应快照。
// 已在栈顶时不移动,返回 (nil, false)。
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.step++
	return h.snapshots[h.step], true
}

// Current 返回 step 指向的快照,历史为空时返回 nil。
func (h *History) Current() Snapshot {
	if h.step < 0 || h.step >= len(h.snapshots) {
		return nil
	}
	return h.snapshots[h.step]
}

// CanUndo 仅当 step 之前还有快照时为真。
func (h *History) CanUndo() bool {
	return h.step > 0
}

// CanRedo 仅当 step 之后还有快照时为真。
func (h *History) CanRedo() bool {
	return h.step < len(h.snapshots)-1
}

// Len 返回历史中的快照数量。
func (h *History) Len() int {
	return len(h.snapshots)
}

// Reset 清空历史并压入一个基线快照(例如清屏后的空白画布)。
func (h *History) Reset(base Snapshot) {
	h.snapshots = h.snapshots[:0]
	h.step = -1
	h.Push(base)
}
