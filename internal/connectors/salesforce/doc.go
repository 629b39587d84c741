// Package salesforce is a client for the Salesforce REST and Analytics APIs.
//
// Authorisation uses the OAuth 2.0 web-server flow: the operator visits
// the authorize URL, pastes back the code, and the refresh token obtained
// from it is kept in the config store. Query follows nextRecordsUrl until
// every record is read; Report returns the detail rows of a saved report.
package salesforce
