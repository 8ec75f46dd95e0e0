// Package file keeps prcache configuration in ~/.prcache/config.toml.
//
// ConfigStore reads and writes the TOML file, exposing nested tables as
// dot-notation keys. Watcher follows edits made outside prcache and reloads
// the store, so a running watch picks up a new cooldown or token.
package file
