// Package startup handles application initialization: configuration
// loading from environment variables, directory validation, and the
// structured startup/shutdown log output.
//
// Configuration is read once at boot via LoadConfig, which also prints
// the banner, system information, and the effective configuration so a
// container log captures the full runtime context. All settings have
// defaults; only the database directory must be writable for startup
// to succeed. Missing media roots are logged as warnings since volumes
// may be mounted after the process starts.
//
// Build-time variables (Version, Commit, BuildTime) are injected via
// -ldflags and exposed through GetBuildInfo for the /version endpoint.
package startup
