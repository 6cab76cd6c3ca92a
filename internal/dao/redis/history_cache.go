package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// HistoryCache 房间消息历史缓存
// 每个房间维护一个版本号，新消息写入后版本号自增，历史数据存放在带版本号的键下，
// 读到旧版本的数据不会被新版本命中，不需要在写入路径上删除缓存
type HistoryCache struct {
	cache AsyncCacheService
	ttl   time.Duration
}

// defaultHistoryTTL 历史数据必须带过期时间，脏标记的有效期以它为准
const defaultHistoryTTL = 30 * time.Minute

// NewHistoryCache cache 为 nil 时所有操作都是空操作，ttl 不大于 0 时使用默认值
func NewHistoryCache(cache AsyncCacheService, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &HistoryCache{cache: cache, ttl: ttl}
}

func versionKey(roomId string) string {
	return "chat:history:" + roomId + ":ver"
}

// dirtyKey 版本号自增失败时写入，存在期间该房间不读也不回填缓存
func dirtyKey(roomId string) string {
	return "chat:history:" + roomId + ":dirty"
}

// dirtyTTL 比历史数据多保留一分钟，保证脏标记过期前旧版本数据已经过期
func (h *HistoryCache) dirtyTTL() time.Duration {
	return h.ttl + time.Minute
}

// isDirty 读取失败按脏处理
func (h *HistoryCache) isDirty(ctx context.Context, roomId string) bool {
	v, err := h.cache.Get(ctx, dirtyKey(roomId))
	if err != nil {
		zap.L().Warn("history cache dirty flag read failed", zap.String("room", roomId), zap.Error(err))
		return true
	}
	return v != ""
}

func dataKey(roomId string, version int64, view string) string {
	return fmt.Sprintf("chat:history:%s:v%d:%s", roomId, version, view)
}

func (h *HistoryCache) version(ctx context.Context, roomId string) (int64, error) {
	v, err := h.cache.Get(ctx, versionKey(roomId))
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// Load 读取某个视图（customer / staff）的缓存历史，未命中返回 false
// 返回的版本号用于之后的 Store：查询数据库期间若有新消息，数据会写到旧版本下，不会被读到
func (h *HistoryCache) Load(ctx context.Context, roomId, view string) (string, int64, bool) {
	if h == nil || h.cache == nil {
		return "", 0, false
	}
	if h.isDirty(ctx, roomId) {
		return "", -1, false
	}
	ver, err := h.version(ctx, roomId)
	if err != nil {
		zap.L().Warn("history cache version read failed", zap.String("room", roomId), zap.Error(err))
		return "", -1, false
	}
	data, err := h.cache.Get(ctx, dataKey(roomId, ver, view))
	if err != nil || data == "" {
		return "", ver, false
	}
	return data, ver, true
}

// Store 写入 version 版本的历史缓存，version 为负数或房间被标脏时不写，失败只记日志
func (h *HistoryCache) Store(ctx context.Context, roomId string, version int64, view, data string) {
	if h == nil || h.cache == nil || version < 0 {
		return
	}
	if h.isDirty(ctx, roomId) {
		return
	}
	if err := h.cache.Set(ctx, dataKey(roomId, version, view), data, h.ttl); err != nil {
		zap.L().Warn("history cache store failed", zap.String("room", roomId), zap.Error(err))
	}
}

// Bump 使房间当前缓存失效，旧版本数据交给异步任务清理
func (h *HistoryCache) Bump(ctx context.Context, roomId string) {
	if h == nil || h.cache == nil {
		return
	}
	ver, err := h.cache.Incr(ctx, versionKey(roomId))
	if err != nil {
		// 版本号没有前进，查询中的读者仍会以旧版本回填，先标脏再清理
		zap.L().Warn("history cache bump failed", zap.String("room", roomId), zap.Error(err))
		if err := h.cache.Set(ctx, dirtyKey(roomId), "1", h.dirtyTTL()); err != nil {
			zap.L().Error("history cache dirty flag write failed", zap.String("room", roomId), zap.Error(err))
		}
		_ = h.cache.DeleteByPattern(ctx, "chat:history:"+roomId+":v*")
		return
	}
	stale := ver - 1
	h.cache.SubmitTask(func() {
		for _, view := range []string{"customer", "staff"} {
			_ = h.cache.Delete(context.Background(), dataKey(roomId, stale, view))
		}
	})
}
