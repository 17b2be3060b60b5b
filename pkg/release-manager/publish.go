package releasemanager

import (
	"context"
	"fmt"

	"github.com/lerenn/release-manager/pkg/release"
	"github.com/lerenn/release-manager/pkg/release-manager/consts"
	"github.com/lerenn/release-manager/pkg/version"
)

// PublishParams selects what to publish.
type PublishParams struct {
	Context context.Context
	// Packages selects packages by key. Empty selects every package.
	Packages []string
	// Versions maps package keys to their next version.
	Versions map[string]string
	// Bump computes the next version of selected packages missing from Versions: major, minor or patch.
	Bump   string
	DryRun bool
}

// PackageInfo describes one configured package.
type PackageInfo struct {
	Key          string
	Name         string
	DisplayName  string
	Path         string
	Version      string
	Dependencies []string
	SkipPublish  bool
	// Err is set when the persisted metadata could not be read.
	Err error
}

// Publish resolves the selection into dependency order and publishes every package in turn.
// Per-package failures are reported in the batch result; only selection and ordering errors are returned.
func (r *realReleaseManager) Publish(params PublishParams) (release.BatchResult, error) {
	var batch release.BatchResult
	err := r.execute(consts.Publish, func() error {
		ctx := params.Context
		if ctx == nil {
			ctx = context.Background()
		}

		order, err := r.catalog.Order(params.Packages)
		if err != nil {
			return err
		}
		if len(order) == 0 {
			return ErrNoPackages
		}

		versions, err := r.nextVersions(order, params)
		if err != nil {
			return err
		}

		r.VerbosePrint("Publishing %v", order)
		batch = r.pipeline.PublishAll(ctx, order, versions, release.Options{DryRun: params.DryRun})
		return nil
	})
	return batch, err
}

// nextVersions completes params.Versions with bumped versions. Skipped packages need none.
func (r *realReleaseManager) nextVersions(order []string, params PublishParams) (map[string]string, error) {
	versions := make(map[string]string, len(order))
	for _, key := range order {
		if v, ok := params.Versions[key]; ok {
			versions[key] = v
			continue
		}

		d, err := r.catalog.Get(key)
		if err != nil {
			return nil, err
		}
		if d.SkipPublish {
			continue
		}
		if params.Bump == "" {
			return nil, fmt.Errorf("%w: %s", ErrVersionMissing, key)
		}

		current, err := d.Version()
		if err != nil {
			return nil, err
		}
		cur, err := version.Parse(current)
		if err != nil {
			return nil, fmt.Errorf("package %s: current version: %w", key, err)
		}
		next, err := cur.Bump(params.Bump)
		if err != nil {
			return nil, err
		}
		versions[key] = next.String()
	}
	return versions, nil
}

// Order returns the selected packages in publish order.
func (r *realReleaseManager) Order(keys []string) ([]string, error) {
	var order []string
	err := r.execute(consts.Order, func() error {
		var err error
		order, err = r.catalog.Order(keys)
		return err
	})
	return order, err
}

// ListPackages describes the configured packages. Versions are read from the metadata store.
func (r *realReleaseManager) ListPackages() ([]PackageInfo, error) {
	var infos []PackageInfo
	err := r.execute(consts.ListPackages, func() error {
		for _, key := range r.catalog.Keys() {
			d, err := r.catalog.Get(key)
			if err != nil {
				return err
			}
			info := PackageInfo{
				Key:          d.Key,
				Name:         d.Name,
				DisplayName:  d.Label(),
				Path:         d.Path,
				Dependencies: d.Dependencies,
				SkipPublish:  d.SkipPublish,
			}
			info.Version, info.Err = d.Version()
			infos = append(infos, info)
		}
		return nil
	})
	return infos, err
}
