package domain

import (
	"github.com/google/wire"
	"github.com/localscan/intel-gateway/app/domain/cron"
	"github.com/localscan/intel-gateway/app/domain/intel"
	"github.com/localscan/intel-gateway/app/utils/httpclients/esi"
	"github.com/localscan/intel-gateway/app/utils/httpclients/zkill"
)

var ServiceProvider = wire.NewSet(
	intel.SettingsFromEnvironment,
	wire.Bind(new(intel.IdentityLookup), new(*esi.Client)),
	wire.Bind(new(intel.StatsLookup), new(*zkill.Client)),
	intel.NewResolvers,
	intel.NewAffiliationService,
	intel.NewOrchestrator,
	intel.NewScanService,
	cron.NewCronService,
)
