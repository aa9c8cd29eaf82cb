// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Corphon/RoleScope/internal/models"
	"github.com/Corphon/RoleScope/internal/utils"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// FeedClient 表示一个订阅统计推送的客户端连接
type FeedClient struct {
	conn     *websocket.Conn
	send     chan []byte
	closed   int32 // 原子操作标志，0=开启，1=关闭
	lastPing int64 // 最近心跳的unix纳秒，读协程写入、清扫协程读取，原子访问
}

// touchPing 刷新最近心跳时间
func (c *FeedClient) touchPing() {
	atomic.StoreInt64(&c.lastPing, time.Now().UnixNano())
}

// pingExpired 检查心跳是否超时
func (c *FeedClient) pingExpired(timeout time.Duration) bool {
	last := time.Unix(0, atomic.LoadInt64(&c.lastPing))
	return time.Since(last) > timeout
}

// Close 安全关闭客户端连接
func (c *FeedClient) Close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// IsClosed 检查连接是否已关闭
func (c *FeedClient) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// FeedHub 管理统计推送的全部客户端连接
// 所有客户端在同一个广播域内，注册/注销/广播都经由通道串行处理
type FeedHub struct {
	clients    map[*FeedClient]bool
	broadcast  chan []byte
	register   chan *FeedClient
	unregister chan *FeedClient
	done       chan struct{}
	closeOnce  sync.Once

	mutex       sync.RWMutex
	pingTimeout time.Duration
}

// NewFeedHub 创建推送中心并启动事件循环
func NewFeedHub() *FeedHub {
	hub := &FeedHub{
		clients:     make(map[*FeedClient]bool),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *FeedClient, 64),
		unregister:  make(chan *FeedClient, 64),
		done:        make(chan struct{}),
		pingTimeout: 60 * time.Second,
	}
	go hub.run()
	return hub
}

func (h *FeedHub) run() {
	cleanupTicker := time.NewTicker(30 * time.Second)
	defer cleanupTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*FeedClient, 0, len(h.clients))
			for client := range h.clients {
				targets = append(targets, client)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满，视为失活连接
					h.removeClient(client)
				}
			}

		case <-cleanupTicker.C:
			h.cleanupExpired()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				client.Close()
			}
			h.clients = make(map[*FeedClient]bool)
			h.mutex.Unlock()
			return
		}
	}
}

func (h *FeedHub) removeClient(client *FeedClient) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mutex.Unlock()
	client.Close()
}

// cleanupExpired 清理超时未响应心跳的连接
func (h *FeedHub) cleanupExpired() {
	h.mutex.RLock()
	var expired []*FeedClient
	for client := range h.clients {
		if client.pingExpired(h.pingTimeout) {
			expired = append(expired, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range expired {
		h.removeClient(client)
	}
}

// ClientCount 当前在线的客户端数量
func (h *FeedHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Shutdown 关闭推送中心，断开所有客户端
func (h *FeedHub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// BroadcastStats 向所有客户端推送一份统计快照
func (h *FeedHub) BroadcastStats(summary *models.Summary, stats *models.BehaviorStats) {
	payload := map[string]interface{}{
		"type":      "stats_refresh",
		"summary":   summary,
		"stats":     stats,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		utils.GetLogger().Errorf("序列化统计推送失败: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		utils.GetLogger().Warnf("推送队列已满，丢弃本轮统计快照")
	}
}

// HandleFeedWS 处理 /ws/feed 的连接升级与收发循环
func (h *FeedHub) HandleFeedWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Errorf("WebSocket 升级失败: %v", err)
		return
	}

	client := &FeedClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	client.touchPing()

	h.register <- client

	go h.writeLoop(client)
	go h.readLoop(client)
}

// writeLoop 把推送消息和心跳写给单个客户端
func (h *FeedHub) writeLoop(client *FeedClient) {
	pingTicker := time.NewTicker(30 * time.Second)
	defer func() {
		pingTicker.Stop()
		client.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-pingTicker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop 消费客户端消息并维护心跳时间
// 订阅方不需要发送业务消息，读取只用于发现断连
func (h *FeedHub) readLoop(client *FeedClient) {
	defer func() {
		if !client.IsClosed() {
			h.unregister <- client
		}
	}()

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.touchPing()
		client.conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
		client.touchPing()
	}
}
