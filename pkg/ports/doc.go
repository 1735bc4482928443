// Package ports defines the boundary interfaces of the Parley engine:
// the generative model capability, session persistence, and definition
// loading. Adapters implement these; the core only depends on the
// interfaces.
package ports
