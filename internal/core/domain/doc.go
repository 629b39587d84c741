// Package domain defines the core business entities for tabula.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Table: An ordered, column-named grid of scalar values
//   - ConversationQuery: A Genesys analytics request payload
//   - TreeEntry: One file found while walking a document library
//   - PublishResult, UploadResult, SendResult: Tagged operation outcomes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
