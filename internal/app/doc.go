// Package app assembles the patchbay host: it builds the logger from
// configuration, loads the service manifest, wires the boot catalog onto a
// board, and runs the introspection server until shutdown. It is decoupled
// from any specific entrypoint like a CLI.
package app
