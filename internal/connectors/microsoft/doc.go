// Package microsoft provides shared support for Microsoft Graph connectors.
//
// This package provides:
//   - An authenticated Graph HTTP client with @odata.nextLink paging
//   - Rate limiting for Graph requests
//   - Mapping of Graph error responses to domain errors
//
// Tokens come from a driven.TokenProvider; the SharePoint connector uses an
// app-only client-secret credential scoped to https://graph.microsoft.com/.default.
//
// # Rate Limits
//
// Graph throttles per app and tenant and answers 429 with a Retry-After
// header. The client records that header on its RateLimiter so the next
// request waits it out.
package microsoft
