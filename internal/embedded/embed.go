// Package embedded holds files compiled into the binary.
package embedded

import (
	_ "embed"
)

// ExampleConfig is the configuration used when no config file is given
// and none exists in the user's home directory.
//
//go:embed config.example.toml
var ExampleConfig []byte
