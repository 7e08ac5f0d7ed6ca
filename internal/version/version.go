package version

// Version is the current version of mbedls.
// Bump it for every release; use semantic versioning MAJOR.MINOR.PATCH.
const Version = "0.4.0"
