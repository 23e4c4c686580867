package version

// Version is the current release of the ares CLI & server.
var Version = "0.1.0"
