// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// and vendor connectors implement them.
//
// # Interfaces
//
//   - ConfigStore: Credential and setting persistence (TOML)
//   - TokenProvider: Access tokens with transparent refresh
//   - ConversationQuerier, UserDirectory: Genesys Cloud analytics and users
//   - RecordSource: Salesforce SOQL and reports
//   - DocumentLibrary: SharePoint document libraries
//   - SpreadsheetBackend: Google Sheets workbooks
//   - Mailbox: Gmail search, read and send
//   - TabularCodec: CSV, TSV, XLSX and ZIP table files
//   - Prompter: Interactive yes/no confirmation
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
