package routes

import (
	"github.com/google/wire"
	v1 "github.com/localscan/intel-gateway/app/interfaces/http/routes/v1"
	"github.com/localscan/intel-gateway/app/interfaces/http/routes/v1/scans"
)

var RouteProvider = wire.NewSet(
	scans.NewScanRoute,
	v1.NewV1Route,
)
