package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/registry"
)

func TestRegistry_JoinCountsMembers(t *testing.T) {
	reg := registry.New()

	res := reg.Join("p1", "AB12CD")
	assert.Len(t, res.Members, 1, "第一个加入者后人数应为 1")
	assert.Nil(t, res.Departed)

	res = reg.Join("p2", "AB12CD")
	assert.Len(t, res.Members, 2)
	assert.ElementsMatch(t, []string{"p1", "p2"}, res.Members)
	assert.Equal(t, 2, reg.Count("AB12CD"))
}

func TestRegistry_JoinIsIdempotentForSameRoom(t *testing.T) {
	reg := registry.New()

	reg.Join("p1", "AB12CD")
	res := reg.Join("p1", "AB12CD")

	assert.Nil(t, res.Departed, "重复加入当前房间不应触发离开语义")
	assert.Len(t, res.Members, 1)
	assert.Equal(t, 1, reg.Count("AB12CD"))
}

func TestRegistry_JoinEvictsFromPreviousRoom(t *testing.T) {
	reg := registry.New()
	reg.Join("p1", "ROOM1")
	reg.Join("p2", "ROOM1")

	res := reg.Join("p1", "ROOM2")

	require.NotNil(t, res.Departed, "换房间时应带出旧房间的离开记录")
	assert.Equal(t, "ROOM1", res.Departed.RoomID)
	assert.ElementsMatch(t, []string{"p2"}, res.Departed.Remaining)
	assert.False(t, res.Departed.Cold)

	// 正反向索引保持一致
	room, ok := reg.RoomOf("p1")
	require.True(t, ok)
	assert.Equal(t, "ROOM2", room)
	assert.Equal(t, 1, reg.Count("ROOM1"))
	assert.Equal(t, 1, reg.Count("ROOM2"))
}

func TestRegistry_LeaveEvictsEmptyRoom(t *testing.T) {
	reg := registry.New()
	reg.Join("p1", "AB12CD")

	dep, ok := reg.Leave("p1", "AB12CD")
	require.True(t, ok)
	assert.True(t, dep.Cold, "最后一人离开后房间应被逐出注册表")
	assert.Empty(t, dep.Remaining)
	assert.Empty(t, reg.ActiveRooms())

	_, ok = reg.RoomOf("p1")
	assert.False(t, ok)
}

func TestRegistry_LeaveWrongRoomIsNoop(t *testing.T) {
	reg := registry.New()
	reg.Join("p1", "AB12CD")

	_, ok := reg.Leave("p1", "OTHER")
	assert.False(t, ok, "离开未占用的房间应是 no-op")
	assert.Equal(t, 1, reg.Count("AB12CD"))
}

func TestRegistry_DisconnectWithoutRoomIsNoop(t *testing.T) {
	reg := registry.New()

	_, ok := reg.Disconnect("ghost")
	assert.False(t, ok)
}

func TestRegistry_DisconnectLeavesCurrentRoom(t *testing.T) {
	reg := registry.New()
	reg.Join("p1", "AB12CD")
	reg.Join("p2", "AB12CD")

	dep, ok := reg.Disconnect("p1")
	require.True(t, ok)
	assert.Equal(t, "AB12CD", dep.RoomID)
	assert.ElementsMatch(t, []string{"p2"}, dep.Remaining)
	assert.Equal(t, 1, reg.Count("AB12CD"))
}

func TestRegistry_SnapshotsAreCopies(t *testing.T) {
	reg := registry.New()
	reg.Join("p1", "AB12CD")

	members := reg.Participants("AB12CD")
	members[0] = "mutated"

	assert.ElementsMatch(t, []string{"p1"}, reg.Participants("AB12CD"),
		"返回的快照被修改不应影响注册表内部状态")
}

// 并发 join/leave/disconnect 轰炸后人数必须与真实在线集合一致。
func TestRegistry_ConcurrentMembershipStaysConsistent(t *testing.T) {
	reg := registry.New()
	const participants = 64

	var wg sync.WaitGroup
	for i := 0; i < participants; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			pid := fmt.Sprintf("p%d", n)
			reg.Join(pid, "ROOM1")
			reg.Join(pid, "ROOM2") // 换房触发隐式离开
			if n%2 == 0 {
				reg.Disconnect(pid)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Count("ROOM1"), "全员换房后 ROOM1 应清空")
	assert.Equal(t, participants/2, reg.Count("ROOM2"))
	for _, pid := range reg.Participants("ROOM2") {
		room, ok := reg.RoomOf(pid)
		require.True(t, ok)
		assert.Equal(t, "ROOM2", room)
	}
}
