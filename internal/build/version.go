package build

// Version is set at link time with -ldflags "-X github.com/integrail/suggest-e2e/internal/build.Version=...".
var Version = "dev"
