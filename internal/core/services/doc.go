// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (vendor connectors and adapters),
// which they receive through their constructors.
package services
