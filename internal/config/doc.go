// Package config loads race configuration files.
//
// Two formats are accepted, chosen by file extension:
//
//   - .yaml / .yml: decoded with gopkg.in/yaml.v3 in strict mode on top of
//     DefaultFile, so omitted options keep their defaults and misspelled keys
//     are rejected.
//   - .cue: unified with the embedded #Config schema (schema.cue), which
//     carries the same defaults plus range constraints, then exported.
//
// Either way the result is converted to race.Config and validated with
// race.Config.Validate before it is returned.
//
// Example (YAML):
//
//	seed: 42
//	strategy: random
//	max_ticks: 2000
//	race:
//	  track_length: 50
//	  lane_count: 3
//	  tick_interval: 250ms
//	  cars:
//	    - {lane: 0, speed: 1.5}
//	    - {lane: 2}
package config
