package main

import "github.com/localscan/intel-gateway/app/domain/intel"

// Scanner is the part of the server stack the CLI needs.
type Scanner struct {
	ScanService *intel.ScanService
	Resolvers   *intel.Resolvers
}
