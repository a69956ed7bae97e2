// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (WithDefaults)
//  2. YAML file (WithConfigFile)
//  3. Environment variables with the NSIDDS_ prefix
//  4. Maps applied with LoadMap (command-line flags)
//
// Environment keys nest on a double underscore, so
// NSIDDS_SERVER__HTTP__MAX_BODY_BYTES sets server.http.max_body_bytes.
//
// Watcher reports changes to the configuration file so that a running
// server can reload the settings that are safe to change in place.
package confloader
