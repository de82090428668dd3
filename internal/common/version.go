package common

// Version is the application version, overridable at build time via
// -ldflags "-X github.com/hklens/hklens/internal/common.Version=...".
var Version = "0.3.0"

// ServiceName identifies the service in logs and the version endpoint.
const ServiceName = "hklens"
