package hooks

import (
	"context"

	"github.com/lerenn/release-manager/pkg/logger"
)

// LoggingOwner is the owner name of the logging observer registrations.
const LoggingOwner = "logging"

// LoggingObserver logs deployment and publish lifecycle events.
type LoggingObserver struct {
	logger logger.Logger
}

// NewLoggingObserver creates a new LoggingObserver instance.
func NewLoggingObserver(logger logger.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// Register subscribes the observer to the built-in lifecycle hooks.
func (o *LoggingObserver) Register(bus BusInterface) error {
	for _, name := range []string{BeforeDeploy, AfterDeploy, OnError, BeforePublish, AfterPublish, OnPublishError} {
		if err := bus.Register(name, o.observe, LoggingOwner); err != nil {
			return err
		}
	}
	return nil
}

func (o *LoggingObserver) observe(_ context.Context, hc *Context) error {
	if hc.Error != nil {
		o.logger.Logf("hook %s: %v", hc.Hook, hc.Error)
		return nil
	}
	o.logger.Logf("hook %s: %v", hc.Hook, hc.Fields())
	return nil
}
