/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
	"testing"
)

const (
	APIServer = "api_server"
	Migrator  = "migrator"
)

var (
	IsDevelopment bool
	ServiceName   string
	ByPassAuth    bool
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "'api_server' or 'migrator'")
	flag.BoolVar(&ByPassAuth, "no_auth", false, "set to true to skip the auth middleware, local debugging only")
	// In a test binary the -test.* flags are not registered until after
	// package init, so parsing here would reject them and abort the run.
	if !testing.Testing() {
		flag.Parse()
	}
}
