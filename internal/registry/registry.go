// Package registry 维护房间与参与者之间的在线成员关系。
// 它是纯内存的簿记：房间 -> 参与者集合，参与者 -> 房间，
// 两个方向的索引在同一把锁下变更，保证任何时刻互相一致。
// 持久化的命令日志不归它管 —— 房间成员清零后只是变"冷"，不是被删除。
package registry

import "sync"

// Departure 描述一次离开房间的结果，供调用方决定向谁广播什么。
type Departure struct {
	RoomID    string
	Remaining []string // 离开后仍在房间内的参与者快照
	Cold      bool     // 房间是否因此清空并被逐出注册表
}

// JoinResult 描述一次加入房间的结果。
type JoinResult struct {
	Members  []string   // 加入后房间的全部参与者快照（含加入者）
	Departed *Departure // 加入者被从上一个房间隐式移出时非 nil
}

// Registry 是并发安全的成员注册表。
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]map[string]struct{} // roomID -> set of participant IDs
	participants map[string]string              // participantID -> roomID
}

// New 创建空的 Registry。
func New() *Registry {
	return &Registry{
		rooms:        make(map[string]map[string]struct{}),
		participants: make(map[string]string),
	}
}

// Join 将参与者加入 roomID。参与者已占用其它房间时，
// 先对旧房间执行 leave 语义再加入新房间（一个参与者至多占用一个房间）。
// 重复加入当前房间是幂等的。
func (r *Registry) Join(participantID, roomID string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var departed *Departure
	if prev, ok := r.participants[participantID]; ok && prev != roomID {
		departed = r.leaveLocked(participantID, prev)
	}

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}
	members[participantID] = struct{}{}
	r.participants[participantID] = roomID

	return JoinResult{Members: snapshot(members), Departed: departed}
}

// Leave 将参与者移出 roomID。
// 参与者不在该房间时返回 (nil, false) —— 离开与断连的竞争天然存在，
// 这不是错误。
func (r *Registry) Leave(participantID, roomID string) (*Departure, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.participants[participantID] != roomID {
		return nil, false
	}
	return r.leaveLocked(participantID, roomID), true
}

// Disconnect 查出参与者当前占用的房间并执行 Leave。
// 没有占用任何房间时返回 (nil, false)，同样不是错误。
func (r *Registry) Disconnect(participantID string) (*Departure, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.participants[participantID]
	if !ok {
		return nil, false
	}
	return r.leaveLocked(participantID, roomID), true
}

// RoomOf 返回参与者当前占用的房间。
func (r *Registry) RoomOf(participantID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.participants[participantID]
	return roomID, ok
}

// Participants 返回房间当前参与者的快照。
func (r *Registry) Participants(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(r.rooms[roomID])
}

// Count 返回房间当前的在线人数。
func (r *Registry) Count(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomID])
}

// ActiveRooms 返回当前至少有一名参与者的房间码快照。
func (r *Registry) ActiveRooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}

// leaveLocked 在持锁状态下执行移出，清空的房间从注册表逐出。
func (r *Registry) leaveLocked(participantID, roomID string) *Departure {
	members := r.rooms[roomID]
	delete(members, participantID)
	delete(r.participants, participantID)

	dep := &Departure{RoomID: roomID, Remaining: snapshot(members)}
	if len(members) == 0 {
		delete(r.rooms, roomID)
		dep.Cold = true
	}
	return dep
}

func snapshot(members map[string]struct{}) []string {
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}
