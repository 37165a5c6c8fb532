// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the execution lifecycle: load every source
// under a path, compile the declared functions, run the requested
// invocations concurrently and report each outcome against its
// expectations. It is decoupled from any specific entrypoint like a CLI.
package app
