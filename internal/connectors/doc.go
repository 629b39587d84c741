// Package connectors builds the vendor clients from the current settings.
//
// Each vendor lives in its own subpackage (genesys, salesforce,
// microsoft/sharepoint, google/sheets, google/gmail). The Factory here
// resolves credentials, wires token providers and hands the clients to the
// core services through the driven ports. It also runs the authorization
// flows that seed those token providers.
package connectors
