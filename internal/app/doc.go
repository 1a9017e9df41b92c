// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the execution lifecycle: loading grid files,
// building their graphs, running the configured walks, and serving path
// queries over HTTP. It is decoupled from any specific entrypoint like a CLI.
package app
