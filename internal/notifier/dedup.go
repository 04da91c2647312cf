package notifier

import (
	"sync"
	"time"
)

// DedupConfig 去重缓存配置。
type DedupConfig struct {
	MaxEntries int    `yaml:"max_entries" json:"max_entries"`
	Window     string `yaml:"window" json:"window"`
}

// Dedup 是有界的 key → 最近出现时间 缓存，窗口内重复的 key 被抑制。
// 超过窗口的条目在写入或 Evict 时淘汰；容量满时淘汰最旧条目。
type Dedup struct {
	mu      sync.Mutex
	entries map[string]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewDedup 创建去重缓存。
func NewDedup(cfg DedupConfig) *Dedup {
	window := 10 * time.Minute
	if cfg.Window != "" {
		if d, err := time.ParseDuration(cfg.Window); err == nil && d > 0 {
			window = d
		}
	}
	max := cfg.MaxEntries
	if max <= 0 {
		max = 1024
	}
	return &Dedup{
		entries: make(map[string]time.Time, max),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// Seen 若 key 在窗口内出现过返回 true；否则记录 key 并返回 false。
func (d *Dedup) Seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.entries[key]; ok && now.Sub(last) < d.window {
		return true
	}
	if _, ok := d.entries[key]; !ok && len(d.entries) >= d.max {
		d.evictLocked(now)
		if len(d.entries) >= d.max {
			d.dropOldestLocked()
		}
	}
	d.entries[key] = now
	return false
}

// Evict 淘汰过期条目，返回淘汰数量。
func (d *Dedup) Evict() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.evictLocked(d.now())
}

// Len 当前条目数。
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Dedup) evictLocked(now time.Time) int {
	removed := 0
	for k, t := range d.entries {
		if now.Sub(t) >= d.window {
			delete(d.entries, k)
			removed++
		}
	}
	return removed
}

func (d *Dedup) dropOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, t := range d.entries {
		if !found || t.Before(oldest) {
			oldestKey, oldest, found = k, t, true
		}
	}
	if found {
		delete(d.entries, oldestKey)
	}
}
