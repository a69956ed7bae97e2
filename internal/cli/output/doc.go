// Package output renders ddsctl results as a table, JSON or YAML.
//
// Values that implement Tabler choose their own columns. Other structs
// and slices of structs are rendered by reflection, with headers taken
// from json tags. YAML output follows the JSON field names.
package output
