package cron

import (
	"context"

	"github.com/mileusna/crontab"
	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/domain/intel"
	"github.com/localscan/intel-gateway/app/utils/logger"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

type CronService struct {
	scanService *intel.ScanService
	resolvers   *intel.Resolvers
}

func NewCronService(scanService *intel.ScanService, resolvers *intel.Resolvers) *CronService {
	return &CronService{
		scanService: scanService,
		resolvers:   resolvers,
	}
}

func (cs *CronService) Start(ctx context.Context, ctab *crontab.Crontab) error {
	if err := ctab.AddJob("* * * * *", func() {
		environment_variables.LoadFromEnv()
	}); err != nil {
		return err
	}
	return ctab.AddJob("* * * * *", func() {
		cs.housekeeping(ctx)
	})
}

func (cs *CronService) housekeeping(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	pruned := cs.scanService.Prune(environment_variables.Current().SCAN_RETENTION)
	fields := logrus.Fields{"pruned_scans": pruned}
	for name, depth := range cs.resolvers.QueueDepths() {
		fields[name] = depth
	}
	logger.GetLogger().WithFields(fields).Info("resolver queues")
}
