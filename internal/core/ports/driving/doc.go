// Package driving defines the interfaces through which external actors
// drive the core (the "primary" ports in hexagonal architecture).
//
// CLI, MCP, and watcher adapters call these interfaces; core services
// implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
