// Package google provides shared infrastructure for the Google API connectors.
//
// It holds the pieces the gmail and sheets connectors have in common:
//   - Service factories for the Gmail, Sheets and Drive clients
//   - Credential loading for service accounts and installed-app OAuth clients
//   - Error mapping from googleapi errors to domain sentinels
//   - Rate limiting to respect per-user API quotas
//
// # Usage
//
//	ts, err := google.ServiceAccountTokenSource(ctx, path, google.SheetsScopes...)
//	sheetsSvc, err := google.NewSheetsService(ctx, ts)
//	driveSvc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
//   - https://www.googleapis.com/auth/gmail.modify (inbox fetch and send)
//   - https://www.googleapis.com/auth/spreadsheets (sheet publishing)
//   - https://www.googleapis.com/auth/drive (workbook lookup and sharing)
package google
