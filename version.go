package parley

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/aretw0/parley.Version=v1.2.3".
var Version = "dev"
