// Package config loads the engine's optional tunables file (§6, §D):
// gcTimeMillis, schedulerBatchLimit. The file is JSONC (via
// [github.com/tidwall/jsonc]), matching the teacher's adapter/json
// preprocessing convention; a missing file or a field absent from the
// document means "use the built-in default" (a field explicitly set to 0
// keeps 0) - the engine never requires a config file to run.
package config
