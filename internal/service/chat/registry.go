package chat

// Token 连接令牌，Register 时分配，连接生命周期内不变
type Token uint64

// Sink 连接的出站队列
// Send 不阻塞，队列已满或连接已关闭时返回 false
type Sink interface {
	Send(frame []byte) bool
	Close()
}

// Principal 升级 WebSocket 时通过 JWT 认证的客服身份，匿名顾客为 nil
type Principal struct {
	StaffId     string
	DisplayName string
}

// Identity 加入房间时确定的参与者身份
type Identity struct {
	Type        string // customer / admin
	DisplayName string
	SessionId   string // 顾客会话 ID
	StaffId     string // 客服 UUID
}

// JoinState 连接状态：Unjoined 或 Joined(roomId)
type JoinState struct {
	roomId string
}

// Unjoined 未加入任何房间
func Unjoined() JoinState { return JoinState{} }

// Joined 已加入 roomId
func Joined(roomId string) JoinState { return JoinState{roomId: roomId} }

// Room 返回当前房间，未加入时 ok 为 false
func (s JoinState) Room() (roomId string, ok bool) {
	return s.roomId, s.roomId != ""
}

func (s JoinState) String() string {
	if s.roomId == "" {
		return "Unjoined"
	}
	return "Joined(" + s.roomId + ")"
}

type connection struct {
	token     Token
	sink      Sink
	principal *Principal
	identity  Identity
	state     JoinState
}

// Registry 连接注册表：token -> 连接记录
// 本身不加锁，由 Hub 的互斥锁保护
type Registry struct {
	next   Token
	conns  map[Token]*connection
	router *Router
}

func newRegistry() *Registry {
	return &Registry{conns: make(map[Token]*connection)}
}

// Register 登记新连接，初始状态为 Unjoined
func (r *Registry) Register(sink Sink, principal *Principal) Token {
	r.next++
	r.conns[r.next] = &connection{token: r.next, sink: sink, principal: principal}
	return r.next
}

// SetIdentity 覆盖连接身份，未知 token 忽略
func (r *Registry) SetIdentity(token Token, identity Identity) {
	if c, ok := r.conns[token]; ok {
		c.identity = identity
	}
}

// Unregister 移除连接并退出其所在房间，返回被移除的 Sink
func (r *Registry) Unregister(token Token) Sink {
	c, ok := r.conns[token]
	if !ok {
		return nil
	}
	r.router.Leave(token)
	delete(r.conns, token)
	return c.sink
}

func (r *Registry) get(token Token) (*connection, bool) {
	c, ok := r.conns[token]
	return c, ok
}

// Len 当前连接数
func (r *Registry) Len() int {
	return len(r.conns)
}
