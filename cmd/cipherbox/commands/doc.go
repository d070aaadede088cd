// Package commands defines the cipherbox CLI.
//
// Commands
//
//   - init           Create or load the local identity
//   - fingerprint    Print the identity fingerprint
//   - prekeys        Generate a batch of prekeys
//   - last-prekey    Generate the last resort prekey
//   - export         Export the identity, optionally sealed to age recipients
//   - open-with      Open the box with an exported identity
//   - session        Initiate, use, inspect and delete sessions
//
// # Implementation
//
// The root command loads configuration and builds the engine before any
// subcommand runs. Every subcommand opens the box, does its work, saves
// the sessions it touched and closes the box again.
package commands
