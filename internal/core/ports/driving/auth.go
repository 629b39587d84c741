package driving

import "context"

// AuthService runs the vendor authorization flows and stores the
// resulting tokens.
type AuthService interface {
	// CheckGenesys obtains and stores a client-credentials token.
	CheckGenesys(ctx context.Context) error

	// SalesforceAuthorizeURL returns the consent page for the connected app.
	SalesforceAuthorizeURL() (string, error)

	// ExchangeSalesforceCode redeems an authorization code and stores the
	// refresh token and instance URL.
	ExchangeSalesforceCode(ctx context.Context, code string) error

	// RefreshSalesforce redeems the stored refresh token.
	RefreshSalesforce(ctx context.Context) error

	// AuthorizeGmail runs the browser consent flow and returns the path
	// the token was written to.
	AuthorizeGmail(ctx context.Context) (string, error)
}
