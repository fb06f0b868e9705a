package auth

import (
	"sync"
	"time"
)

// LoginLimiter throttles failed logins per client IP and username. After
// MaxAttempts failures inside Window the pair is locked out for Lockout.
type LoginLimiter struct {
	mu       sync.Mutex
	failures map[string]*failureWindow
	cfg      LoginLimitConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type failureWindow struct {
	count       int
	start       time.Time
	lockedUntil time.Time
}

// LoginLimitConfig contains configuration for the login limiter.
type LoginLimitConfig struct {
	MaxAttempts     int           // default: 5
	Window          time.Duration // default: 15m
	Lockout         time.Duration // default: 30m
	CleanupInterval time.Duration // default: 5m
}

func (cfg LoginLimitConfig) withDefaults() LoginLimitConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return cfg
}

// NewLoginLimiter creates a limiter and starts its background cleanup.
// Call Stop to release the goroutine.
func NewLoginLimiter(cfg LoginLimitConfig) *LoginLimiter {
	l := &LoginLimiter{
		failures: make(map[string]*failureWindow),
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop stops the background cleanup goroutine.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func limiterKey(ip, username string) string {
	return ip + ":" + username
}

// Allow reports whether a login attempt may proceed. When it may not,
// retryAfter says how long the lockout still lasts.
func (l *LoginLimiter) Allow(ip, username string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.failures[limiterKey(ip, username)]
	if !ok {
		return true, 0
	}
	now := l.now()
	if now.Before(w.lockedUntil) {
		return false, w.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a
// lockout.
func (l *LoginLimiter) RecordFailure(ip, username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := limiterKey(ip, username)
	now := l.now()
	w, ok := l.failures[key]
	if !ok || now.Sub(w.start) > l.cfg.Window {
		w = &failureWindow{start: now}
		l.failures[key] = w
	}

	w.count++
	if w.count >= l.cfg.MaxAttempts {
		w.lockedUntil = now.Add(l.cfg.Lockout)
		return true
	}
	return false
}

// RecordSuccess forgets the failures of a pair after a successful login.
func (l *LoginLimiter) RecordSuccess(ip, username string) {
	l.mu.Lock()
	delete(l.failures, limiterKey(ip, username))
	l.mu.Unlock()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops windows that are neither counting nor locking anymore.
func (l *LoginLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.failures {
		if now.Sub(w.start) > l.cfg.Window && !now.Before(w.lockedUntil) {
			delete(l.failures, key)
		}
	}
}
