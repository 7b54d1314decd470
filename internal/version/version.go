// internal/version/version.go
package version

// Version is the sketchtree release version.
const Version = "0.1.0"
