// internal/history/history_test.go
package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PushAndCurrent(t *testing.T) {
	h := New()
	assert.False(t, h.CanUndo(), "空历史不应允许撤销")
	assert.False(t, h.CanRedo(), "空历史不应允许重做")
	assert.Nil(t, h.Current(), "空历史当前快照应为 nil")

	h.Push(Snapshot("a"))
	h.Push(Snapshot("b"))

	assert.Equal(t, 2, h.Len(), "快照数量应为 2")
	assert.Equal(t, Snapshot("b"), h.Current(), "当前快照应为最新压入的快照")
	assert.True(t, h.CanUndo(), "有前序快照时应允许撤销")
	assert.False(t, h.CanRedo(), "处于栈顶时不应允许重做")
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h := New()
	h.Push(Snapshot("a"))
	h.Push(Snapshot("b"))
	h.Push(Snapshot("c"))

	s, ok := h.Undo()
	require.True(t, ok, "撤销应成功")
	assert.Equal(t, Snapshot("b"), s, "撤销后应回到上一快照")

	s, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, Snapshot("a"), s)

	_, ok = h.Undo()
	assert.False(t, ok, "已在栈底时撤销应为无效操作")
	assert.Equal(t, Snapshot("a"), h.Current(), "无效撤销不应移动指针")

	s, ok = h.Redo()
	require.True(t, ok, "重做应成功")
	assert.Equal(t, Snapshot("b"), s)

	s, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, Snapshot("c"), s)

	_, ok = h.Redo()
	assert.False(t, ok, "已在栈顶时重做应为无效操作")
}

func TestHistory_PushTruncatesRedoTail(t *testing.T) {
	h := New()
	h.Push(Snapshot("a"))
	h.Push(Snapshot("b"))
	h.Push(Snapshot("c"))

	_, ok := h.Undo()
	require.True(t, ok)
	_, ok = h.Undo()
	require.True(t, ok)
	require.True(t, h.CanRedo(), "回退后应存在重做分支")

	h.Push(Snapshot("d"))

	assert.False(t, h.CanRedo(), "新快照应截断重做分支")
	assert.Equal(t, 2, h.Len(), "截断后栈内应只剩 a 与 d")
	assert.Equal(t, Snapshot("d"), h.Current())

	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, Snapshot("a"), s, "撤销应跳过已被截断的分支")
}

func TestHistory_Reset(t *testing.T) {
	h := New()
	h.Push(Snapshot("a"))
	h.Push(Snapshot("b"))

	h.Reset(Snapshot("blank"))

	assert.Equal(t, 1, h.Len(), "重置后仅保留基线快照")
	assert.Equal(t, Snapshot("blank"), h.Current())
	assert.False(t, h.CanUndo(), "基线快照之前不应允许撤销")
	assert.False(t, h.CanRedo())
}

func TestHistory_SnapshotIsolation(t *testing.T) {
	h := New()
	buf := []byte("abc")
	h.Push(buf)
	buf[0] = 'z'

	assert.Equal(t, Snapshot("abc"), h.Current(), "历史应持有快照副本,不受调用方修改影响")
}
