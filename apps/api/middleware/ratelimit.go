package middleware

import (
	"fmt"
	"net/http"

	"order-feedback/pkg/response"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
)

// ResOrderPlacement guards order creation and checkout.
const ResOrderPlacement = "order_placement"

// InitSentinel starts sentinel and loads a reject-above-qps rule for resource.
func InitSentinel(resource string, qps float64) error {
	if err := sentinel.InitDefault(); err != nil {
		return fmt.Errorf("init sentinel: %w", err)
	}
	_, err := flow.LoadRules([]*flow.Rule{
		{
			Resource:               resource,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              qps,
			StatIntervalInMs:       1000,
		},
	})
	if err != nil {
		return fmt.Errorf("load sentinel rules: %w", err)
	}
	return nil
}

// RateLimit answers 429 once resource is over its rule.
func RateLimit(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			response.Abort(c, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		defer e.Exit()
		c.Next()
	}
}
