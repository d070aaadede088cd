// Package app loads cipherbox configuration and wires the engine, storage
// backend, logger and metrics behind a box.
//
// Configuration is layered with koanf: built-in defaults, then an optional
// YAML file, then CIPHERBOX_* environment variables, then explicit
// overrides (CLI flags). Later layers win.
package app
