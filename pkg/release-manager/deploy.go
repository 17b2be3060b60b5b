package releasemanager

import (
	"context"

	"github.com/lerenn/release-manager/pkg/deploy"
	"github.com/lerenn/release-manager/pkg/release-manager/consts"
)

// DeployParams selects the strategy to run.
type DeployParams struct {
	Context  context.Context
	Strategy string
	Options  deploy.Options
}

// Deploy runs a deployment strategy. The registries stay intact when it fails.
func (r *realReleaseManager) Deploy(params DeployParams) (deploy.Result, error) {
	var result deploy.Result
	err := r.execute(consts.Deploy, func() error {
		ctx := params.Context
		if ctx == nil {
			ctx = context.Background()
		}

		var err error
		result, err = r.registry.Deploy(ctx, params.Strategy, params.Options)
		return err
	})
	return result, err
}

// ListStrategies lists the registered strategies in registration order.
func (r *realReleaseManager) ListStrategies() []deploy.Info {
	var infos []deploy.Info
	_ = r.execute(consts.ListStrategies, func() error {
		infos = r.registry.ListStrategies()
		return nil
	})
	return infos
}
