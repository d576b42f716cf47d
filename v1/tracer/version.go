package tracer

import (
	"runtime"
	"runtime/debug"
)

// DerivedVersion returns the version string reported when Config.ServiceVersion
// is empty: "reqtraced <module version> (<go version>)".
func DerivedVersion() string {
	version := "devel"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	return DefaultServiceName + " " + version + " (" + runtime.Version() + ")"
}
