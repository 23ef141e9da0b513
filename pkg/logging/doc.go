// Package logging provides subsystem-tagged structured logging on top of
// log/slog. All components log through the package-level helpers so that
// every entry carries a "subsystem" attribute identifying its origin
// (e.g. "OAuth", "Salesforce", "Server").
package logging
