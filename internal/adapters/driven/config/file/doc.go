// Package file provides the file-based configuration and credential store.
//
// Values live in a TOML file (default ~/.tabula/config.toml) written with
// owner-only permissions. Keys are grouped by vendor, so the key
// "genesys.client_id" is stored as client_id under a [genesys] table.
package file
