package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// CollectionConfig configures error aggregation.
type CollectionConfig struct {
	Retention  time.Duration // how long an aggregated entry stays visible
	MaxEntries int           // max unique entries kept; oldest evicted first
}

// AggregatedLogEntry is one deduplicated warn/error line with occurrence counts.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// ErrorCollector aggregates repeated warn/error logs in memory so the
// dashboard's system view can show them without scraping log output.
type ErrorCollector struct {
	config *CollectionConfig
	logMap map[string]*AggregatedLogEntry
	mutex  sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewErrorCollector(config *CollectionConfig) *ErrorCollector {
	if config.Retention <= 0 {
		config.Retention = 30 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 200
	}

	ctx, cancel := context.WithCancel(context.Background())
	collector := &ErrorCollector{
		config: config,
		logMap: make(map[string]*AggregatedLogEntry),
		ctx:    ctx,
		cancel: cancel,
	}

	collector.wg.Add(1)
	go collector.periodicPrune()

	return collector
}

func (d *ErrorCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := d.generateKey(level, message, caller)

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if entry, exists := d.logMap[key]; exists {
		entry.Count++
		entry.LastSeen = now
		entry.Fields = fields
		return
	}

	if len(d.logMap) >= d.config.MaxEntries {
		d.evictOldest()
	}

	d.logMap[key] = &AggregatedLogEntry{
		Level:     level,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// Recent returns aggregated entries, most recently seen first.
func (d *ErrorCollector) Recent(limit int) []AggregatedLogEntry {
	d.mutex.RLock()
	logs := make([]AggregatedLogEntry, 0, len(d.logMap))
	for _, entry := range d.logMap {
		logs = append(logs, *entry)
	}
	d.mutex.RUnlock()

	sort.Slice(logs, func(i, j int) bool { return logs[i].LastSeen.After(logs[j].LastSeen) })
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs
}

func (d *ErrorCollector) generateKey(level, message, caller string) string {
	// Dedupe on level + message + caller; fields vary per occurrence.
	data := struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Caller  string `json:"caller"`
	}{
		Level:   level,
		Message: message,
		Caller:  caller,
	}

	jsonData, _ := json.Marshal(data)
	hash := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", hash)
}

func (d *ErrorCollector) periodicPrune() {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-d.config.Retention)
			d.mutex.Lock()
			for key, entry := range d.logMap {
				if entry.LastSeen.Before(cutoff) {
					delete(d.logMap, key)
				}
			}
			d.mutex.Unlock()
		case <-d.ctx.Done():
			return
		}
	}
}

// caller must hold d.mutex
func (d *ErrorCollector) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range d.logMap {
		if oldestKey == "" || entry.LastSeen.Before(oldest) {
			oldestKey = key
			oldest = entry.LastSeen
		}
	}
	if oldestKey != "" {
		delete(d.logMap, oldestKey)
	}
}

func (d *ErrorCollector) Close() {
	d.cancel()
	d.wg.Wait()
}
