package httpclients

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/utils/contextkeys"
	"github.com/localscan/intel-gateway/app/utils/logger"
	"resty.dev/v3"
)

func NewClient(clientName string, baseURL string, timeout time.Duration, userAgent string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		start := time.Now()
		ctx := context.WithValue(r.Context(), contextkeys.HttpClientStartsAt{}, start)
		ctx = context.WithValue(ctx, contextkeys.HttpClientRequestBody{}, r.Body)
		r.SetContext(ctx)
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		startTime, _ := r.Request.Context().Value(contextkeys.HttpClientStartsAt{}).(time.Time)
		requestBody := r.Request.Context().Value(contextkeys.HttpClientRequestBody{})
		fields := logrus.Fields{
			"client":   clientName,
			"status":   r.StatusCode(),
			"req_body": requestBody,
			"latency":  time.Since(startTime).String(),
		}
		if raw := r.Request.RawRequest; raw != nil {
			fields["method"] = raw.Method
			fields["path"] = raw.URL.Path
		}
		entry := logger.GetLogger().WithFields(fields)
		if r.IsError() {
			entry.Warn("upstream request failed")
			return nil
		}
		entry.Debug("upstream request")
		return nil
	})
	return client
}
