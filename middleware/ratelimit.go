package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	staleClientAfter = 10 * time.Minute
	sweepEvery       = 5 * time.Minute
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a per-client-IP token bucket.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*bucket
	burst      float64
	refillRate float64 // tokens per second
	now        func() time.Time
	done       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiter allows burst requests per window for each client. Call Stop to
// release the sweeper goroutine.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:    make(map[string]*bucket),
		burst:      float64(burst),
		refillRate: float64(burst) / window.Seconds(),
		now:        time.Now,
		done:       make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

func (rl *RateLimiter) evictStale() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for ip, b := range rl.clients {
		if now.Sub(b.lastSeen) > staleClientAfter {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// take consumes one token for client. When the bucket is empty it reports how
// long until the next token is available.
func (rl *RateLimiter) take(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[client]
	if !ok {
		rl.clients[client] = &bucket{tokens: rl.burst - 1, lastSeen: now}
		return true, 0
	}

	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.refillRate)
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / rl.refillRate * float64(time.Second))
	return false, wait
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.take(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abort(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
