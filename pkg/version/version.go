package version

// Version is the current cv version. Override at build time with:
//
//	go build -ldflags "-X github.com/vanderheijden86/catalogview/pkg/version.Version=v1.2.3"
var Version = "v0.4.0"
