// Package genesys is a client for the Genesys Cloud platform API.
//
// It posts conversation detail queries to the analytics API and lists
// users from the directory. Requests authenticate with a bearer token from
// a driven.TokenProvider, normally the client-credentials grant in
// internal/adapters/driven/auth.
package genesys
