package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// bucketIdle 超过该时长未使用的令牌桶会被清理。
const bucketIdle = 10 * time.Minute

// RateLimiter 按客户端 IP 的令牌桶限流，每条路由各自计数。
type RateLimiter struct {
	ips      *IPResolver
	buckets  sync.Map // "路由|IP" -> *bucket
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒补充的令牌数
	lastRefill time.Time
}

// NewRateLimiter 创建限流器并启动后台清理，关闭时调用 Stop。
func NewRateLimiter(ips *IPResolver, cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{ips: ips, stop: make(chan struct{})}
	go rl.cleanup(cleanupInterval)
	return rl
}

// Stop 停止后台清理，可重复调用。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit 返回限流中间件：同一 IP 在 route 上每分钟最多 perMinute 次。
// perMinute<=0 时不限流。
func (rl *RateLimiter) Limit(route string, perMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		if perMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := route + "|" + rl.ips.ClientIP(r)
			if !rl.bucket(key, perMinute).allow() {
				retry := int(60.0/float64(perMinute)) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) bucket(key string, perMinute int) *bucket {
	if v, ok := rl.buckets.Load(key); ok {
		return v.(*bucket)
	}
	limit := float64(perMinute)
	v, _ := rl.buckets.LoadOrStore(key, &bucket{
		tokens:     limit,
		maxTokens:  limit,
		refillRate: limit / 60,
		lastRefill: time.Now(),
	})
	return v.(*bucket)
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.buckets.Range(func(key, value any) bool {
				b := value.(*bucket)
				b.mu.Lock()
				idle := now.Sub(b.lastRefill)
				b.mu.Unlock()
				if idle > bucketIdle {
					rl.buckets.Delete(key)
				}
				return true
			})
		}
	}
}
