// Package branding holds the product name shown by binaries and tools.
package branding

// AppName is the user-facing product name.
const AppName = "Bonita Forward"
