package main

import (
	"context"
	nethttp "net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"

	_ "github.com/grafana/pyroscope-go/godeltaprof/http/pprof"

	"github.com/mileusna/crontab"
	"github.com/localscan/intel-gateway/app/domain/cron"
	"github.com/localscan/intel-gateway/app/domain/intel"
	apphttp "github.com/localscan/intel-gateway/app/interfaces/http"
	"github.com/localscan/intel-gateway/app/utils/logger"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

type Application struct {
	HttpServer  *apphttp.HttpServer
	CronService *cron.CronService
	ScanService *intel.ScanService
	Resolvers   *intel.Resolvers
}

func (application *Application) Start(ctx context.Context) error {
	application.Resolvers.Start(ctx)
	defer application.ScanService.Shutdown()

	cronTab := crontab.New()
	defer cronTab.Shutdown()
	if err := application.CronService.Start(ctx, cronTab); err != nil {
		return err
	}

	return application.HttpServer.Run(ctx)
}

func init() {
	logger.GetLogger()
	environment_variables.LoadFromEnv()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// pprof endpoints for Pyroscope pull mode
	go func() {
		if err := nethttp.ListenAndServe("0.0.0.0:6060", nil); err != nil {
			logger.GetLogger().Errorf("pprof server failed: %v", err)
		}
	}()

	application, err := CreateApplication()
	if err != nil {
		panic(err)
	}
	if err := application.Start(ctx); err != nil {
		logger.GetLogger().Errorf("server stopped: %v", err)
	}
}
