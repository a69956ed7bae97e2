// Package config defines the nsi-dds-server configuration structure,
// its defaults, validation, and a log-safe view.
package config
