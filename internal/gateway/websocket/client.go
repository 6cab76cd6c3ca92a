// Package websocket 负责 WebSocket 升级与每个连接的读写协程
// 每个连接一个读协程，入站帧按顺序交给 Hub 处理；一个写协程，从有界队列取帧写出并定期发送 ping
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"shop_chat_server/internal/service/chat"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Options 连接参数
type Options struct {
	SendBufferSize  int           // 发送队列长度
	MaxMessageBytes int64         // 单帧最大字节数
	WriteWait       time.Duration // 单次写超时
	PongWait        time.Duration // 等待 pong 的超时
	PingPeriod      time.Duration // 发送 ping 的间隔，须小于 PongWait
}

// DefaultOptions 默认连接参数
func DefaultOptions() Options {
	return Options{
		SendBufferSize:  256,
		MaxMessageBytes: 8192,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      54 * time.Second,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 跨域由 cors 中间件负责
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 单个 WebSocket 连接，实现 chat.Sink
type Client struct {
	conn  *websocket.Conn
	hub   Hub
	token chat.Token
	opts  Options

	send      chan []byte // 发往前端的帧，永不关闭
	done      chan struct{}
	closeOnce sync.Once
}

// Send 非阻塞入队，队列已满或连接已关闭时返回 false
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close 通知写协程发送关闭帧并断开连接，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ServeWS 升级连接并阻塞到连接结束
// principal 为 nil 表示匿名顾客连接
func ServeWS(hub Hub, w http.ResponseWriter, r *http.Request, principal *chat.Principal, opts Options) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{
		conn: conn,
		hub:  hub,
		opts: opts,
		send: make(chan []byte, opts.SendBufferSize),
		done: make(chan struct{}),
	}
	token, ok := hub.Connect(client, principal)
	if !ok {
		_ = conn.Close()
		return nil
	}
	client.token = token
	zap.L().Info("ws connected", zap.Uint64("token", uint64(token)), zap.Bool("staff", principal != nil))

	go client.writePump()
	client.readPump(r.Context())
	return nil
}

// readPump 读取前端帧交给 Hub，出错即断开
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Disconnect(c.token)
		zap.L().Info("ws disconnected", zap.Uint64("token", uint64(c.token)))
	}()

	if c.opts.MaxMessageBytes > 0 {
		c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage() // 阻塞
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read failed", zap.Uint64("token", uint64(c.token)), zap.Error(err))
			}
			return
		}
		c.hub.Handle(ctx, c.token, data)
	}
}

// writePump 将队列中的帧写给前端，写失败或连接被关闭时退出
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("ws write failed", zap.Uint64("token", uint64(c.token)), zap.Error(err))
				c.hub.Disconnect(c.token)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.hub.Disconnect(c.token)
				return
			}
		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush 尽量写出关闭前已入队的帧
func (c *Client) flush() {
	for {
		select {
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	return c.conn.WriteMessage(messageType, data)
}
