package config

// Version is the service binary version.
// Set at build time via: -ldflags "-X github.com/campusgraph/socialgraph/internal/config.Version=<tag>"
var Version = "dev"
