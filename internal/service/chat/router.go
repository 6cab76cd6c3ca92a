package chat

// Router 房间成员表：roomId -> token 集合
// 一个连接同一时刻最多属于一个房间，由 Hub 的互斥锁保护
type Router struct {
	rooms    map[string]map[Token]struct{}
	registry *Registry
}

func newRouter(registry *Registry) *Router {
	rt := &Router{rooms: make(map[string]map[Token]struct{}), registry: registry}
	registry.router = rt
	return rt
}

// Join 将连接移入 roomId，先退出之前的房间
// 房间是否存在由调用方在加锁前检查
func (rt *Router) Join(token Token, roomId string) bool {
	c, ok := rt.registry.get(token)
	if !ok {
		return false
	}
	rt.Leave(token)
	members, ok := rt.rooms[roomId]
	if !ok {
		members = make(map[Token]struct{})
		rt.rooms[roomId] = members
	}
	members[token] = struct{}{}
	c.state = Joined(roomId)
	return true
}

// Leave 退出当前房间，可重复调用
func (rt *Router) Leave(token Token) {
	c, ok := rt.registry.get(token)
	if !ok {
		return
	}
	roomId, joined := c.state.Room()
	if !joined {
		return
	}
	if members, ok := rt.rooms[roomId]; ok {
		delete(members, token)
		if len(members) == 0 {
			delete(rt.rooms, roomId)
		}
	}
	c.state = Unjoined()
}

// MembersOf 返回房间当前成员的副本，无人时为空
func (rt *Router) MembersOf(roomId string) []Token {
	members := rt.rooms[roomId]
	tokens := make([]Token, 0, len(members))
	for t := range members {
		tokens = append(tokens, t)
	}
	return tokens
}

// Rooms 有连接的房间列表
func (rt *Router) Rooms() []string {
	ids := make([]string, 0, len(rt.rooms))
	for id := range rt.rooms {
		ids = append(ids, id)
	}
	return ids
}
