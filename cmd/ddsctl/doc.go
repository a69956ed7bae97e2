// Package main provides the entry point for ddsctl.
//
// ddsctl talks to an nsi-dds-server: it checks liveness, posts
// notifications documents (optionally chunked or with leading junk bytes
// to exercise the server's prolog handling), reads the inbox, and
// decodes documents locally.
//
// Usage:
//
//	ddsctl [global flags] command [flags]
//	ddsctl -s https://dds.example.net:8443 --ca-file ca.pem inbox list
package main
