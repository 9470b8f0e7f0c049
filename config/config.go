package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/simon-lentz/ivm/diag"
)

// DefaultGCTimeMillis is §6's default idle duration before an
// unsubscribed live query becomes eligible for cleanup.
const DefaultGCTimeMillis = 5000

// Config holds the engine-wide tunables a deployment may override.
// The zero value is not directly usable; call [Default] or [Load].
type Config struct {
	// GCTimeMillis is the idle duration, in milliseconds, after which an
	// unsubscribed live query becomes eligible for cleanup.
	GCTimeMillis int `json:"gcTimeMillis"`

	// SchedulerBatchLimit caps the job count the transaction-scoped
	// scheduler logs a warning about per flush iteration (§9,
	// "schedulerBatchLimit"). 0 disables the check - the scheduler never
	// refuses to run queued work regardless of this setting.
	SchedulerBatchLimit int `json:"schedulerBatchLimit"`
}

// Default returns the engine's built-in tunables, used whenever no
// config file is supplied or a field is absent from the document.
func Default() Config {
	return Config{GCTimeMillis: DefaultGCTimeMillis, SchedulerBatchLimit: 0}
}

// GCTime returns GCTimeMillis as a [time.Duration].
func (c Config) GCTime() time.Duration {
	return time.Duration(c.GCTimeMillis) * time.Millisecond
}

// rawConfig mirrors Config with pointer fields, so Load can distinguish
// "field absent from the document" from "field explicitly set to zero".
type rawConfig struct {
	GCTimeMillis        *int `json:"gcTimeMillis"`
	SchedulerBatchLimit *int `json:"schedulerBatchLimit"`
}

// Load parses a JSONC document into a [Config], starting from [Default]
// and overriding only the fields the document sets. An empty or nil data
// returns [Default] unchanged.
func Load(data []byte) (Config, diag.Result) {
	col := diag.NewCollector(diag.NoLimit)
	cfg := Default()
	if len(data) == 0 {
		return cfg, col.Result()
	}

	var raw rawConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		col.Collect(diag.NewIssue(diag.Error, diag.EConfigSchemaViolation,
			fmt.Sprintf("config: invalid document: %s", err)).Build())
		return cfg, col.Result()
	}

	if raw.GCTimeMillis != nil {
		if *raw.GCTimeMillis < 0 {
			col.Collect(diag.NewIssue(diag.Error, diag.EConfigSchemaViolation,
				"config: gcTimeMillis must be >= 0").WithDetail("value", fmt.Sprint(*raw.GCTimeMillis)).Build())
		} else {
			cfg.GCTimeMillis = *raw.GCTimeMillis
		}
	}
	if raw.SchedulerBatchLimit != nil {
		if *raw.SchedulerBatchLimit < 0 {
			col.Collect(diag.NewIssue(diag.Error, diag.EConfigSchemaViolation,
				"config: schedulerBatchLimit must be >= 0").WithDetail("value", fmt.Sprint(*raw.SchedulerBatchLimit)).Build())
		} else {
			cfg.SchedulerBatchLimit = *raw.SchedulerBatchLimit
		}
	}
	return cfg, col.Result()
}

// LoadFile reads path and parses it with [Load]. A missing file returns
// [Default] with an OK result - the engine never requires a config file.
func LoadFile(path string) (Config, diag.Result) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), diag.OK()
		}
		col := diag.NewCollector(diag.NoLimit)
		col.Collect(diag.NewIssue(diag.Error, diag.EConfigSchemaViolation,
			fmt.Sprintf("config: reading %s: %s", path, err)).Build())
		return Default(), col.Result()
	}
	return Load(data)
}
