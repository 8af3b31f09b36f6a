// Package config loads the JSON configuration shared by the suiaictl
// command and other processes embedding the SDK: network selection, the
// deployed package, where signing material comes from, logging, and the
// submission journal backends.
package config
