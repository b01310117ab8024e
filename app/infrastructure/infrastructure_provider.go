package infrastructure

import (
	"github.com/google/wire"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/app/utils/httpclients"
	"github.com/localscan/intel-gateway/app/utils/httpclients/esi"
	"github.com/localscan/intel-gateway/app/utils/httpclients/zkill"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

var InfrastructureProvider = wire.NewSet(
	cache.NewBackend,
	cache.NewCache,
	NewESIClient,
	NewZKillClient,
)

func NewESIClient() *esi.Client {
	envs := environment_variables.Current()
	return esi.NewClient(httpclients.NewClient("ESIClient", envs.ESI_BASE_URL, envs.UPSTREAM_TIMEOUT, envs.USER_AGENT))
}

func NewZKillClient() *zkill.Client {
	envs := environment_variables.Current()
	return zkill.NewClient(
		httpclients.NewClient("ZKillboardClient", envs.ZKILL_BASE_URL, envs.UPSTREAM_TIMEOUT, envs.USER_AGENT),
		envs.ORIGIN_HOST,
	)
}
