package constants

import "os"

// GetConfigPath returns the config file named by TRITRACK_CONFIG, or "" when
// defaults should be used.
func GetConfigPath() string {
	return os.Getenv("TRITRACK_CONFIG")
}

func GetListenAddr() string {
	addr := os.Getenv("TRITRACK_ADDR")
	if addr != "" {
		return addr
	}
	return DefaultListenAddr
}

// two notes whose intervals touch within Epsilon do not overlap
const Epsilon = 1e-6

// truncations must leave strictly more than this many seconds
const MinTruncatedDuration = 0.01

const DefaultTicksPerBeat = 480

const DefaultTempo = 120.0

const DefaultListenAddr = ":8080"

// 16 MiB
const DefaultMaxUploadBytes = 16 * 1024 * 1024
