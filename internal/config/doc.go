// Package config loads and validates the host process configuration from
// YAML or JSON files. It covers host concerns only (logging, the
// introspection server, manifest locations); service definitions live in the
// HCL manifest handled by the manifest package.
package config
