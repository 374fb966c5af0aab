// Package config defines the application configuration and its loading
// rules. Configuration is constructed once at startup and passed by
// reference into whichever component needs it; there is no ambient
// global state.
package config
