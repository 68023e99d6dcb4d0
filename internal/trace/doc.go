// Package trace turns race snapshots into a reproducible digest.
//
// Each rendered snapshot becomes a Frame: the snapshot without wall-clock
// fields and with only the events that are new since the previous frame.
// Frames are serialized as canonical JSON (RFC 8785 key order, NFC strings,
// shortest round-trip floats, no HTML escaping) and fed to a SHA-256 digest
// with domain separation. Two runs with the same seed and configuration
// produce the same digest byte for byte.
package trace
