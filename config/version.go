package config

import "strings"

// Version is stamped at build time with
// -ldflags "-X github.com/localscan/intel-gateway/config.Version=<tag>".
var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
