/*
Copyright 2025 David Arnold
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package core

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gitlab.com/davidxarnold/eksinv/pkg/cloud"
)

// ErrNoRegions is returned when a run is started without any region.
var ErrNoRegions = errors.New("no regions configured")

// ReporterOptions configures a Reporter.
type ReporterOptions struct {
	Credentials cloud.CredentialsContext
	Scope       Scope
	// IdentityCache, when set, is consulted before calling the provider's
	// identity API.
	IdentityCache *cloud.Cache
}

// Reporter builds inventory rows from a cloud.Provider. A Reporter performs
// one sequential pass per Run and holds no state between runs.
type Reporter struct {
	provider cloud.Provider
	opts     ReporterOptions
}

// NewReporter returns a Reporter backed by provider.
func NewReporter(provider cloud.Provider, opts ReporterOptions) *Reporter {
	if opts.Scope == "" {
		opts.Scope = ScopePerRegion
	}
	return &Reporter{provider: provider, opts: opts}
}

// Targets lists clusters in regions and pairs each with the region its
// instances are queried in, in discovery order.
func (r *Reporter) Targets(ctx context.Context, regions []string) ([]Target, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}

	if r.opts.Scope == ScopeLastRegion {
		region := regions[len(regions)-1]
		log.Warnf("region scope %s: listing clusters in %s only, %d other region(s) ignored",
			ScopeLastRegion, region, len(regions)-1)
		return r.listTargets(ctx, region, nil)
	}

	var targets []Target
	for _, region := range regions {
		var err error
		targets, err = r.listTargets(ctx, region, targets)
		if err != nil {
			return nil, err
		}
	}
	return targets, nil
}

func (r *Reporter) listTargets(ctx context.Context, region string, targets []Target) ([]Target, error) {
	clusters, err := r.provider.ListClusters(ctx, r.opts.Credentials, region)
	if err != nil {
		return nil, err
	}
	for _, cluster := range clusters {
		targets = append(targets, Target{Region: region, Cluster: cluster})
	}
	return targets, nil
}

// Run lists targets, resolves the account once, and calls emit for every
// instance owned by each target, in discovery order. The first error from
// the provider or from emit aborts the run; rows already emitted stay emitted.
func (r *Reporter) Run(ctx context.Context, regions []string, emit func(ReportRow) error) (*Summary, error) {
	targets, err := r.Targets(ctx, regions)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Clusters: make([]ClusterSummary, 0, len(targets))}
	resolved := false
	for _, t := range targets {
		if !resolved {
			summary.AccountID, err = r.account(ctx)
			if err != nil {
				return summary, err
			}
			resolved = true
		}

		instances, err := r.provider.ClusterInstances(ctx, r.opts.Credentials, t.Region, t.Cluster)
		if err != nil {
			return summary, err
		}

		cs := ClusterSummary{Region: t.Region, Cluster: t.Cluster}
		for _, instance := range instances {
			if !instance.OwnedBy(t.Cluster) {
				log.WithFields(log.Fields{
					"cluster":  t.Cluster,
					"region":   t.Region,
					"instance": instance.ID,
				}).Warn("skipping instance without cluster ownership tag")
				summary.Skipped++
				continue
			}

			row := ReportRow{
				AccountID:    summary.AccountID,
				ClusterName:  t.Cluster,
				InstanceID:   instance.ID,
				InstanceType: instance.Type,
				Region:       t.Region,
			}
			if err := emit(row); err != nil {
				return summary, fmt.Errorf("write row for %s: %w", instance.ID, err)
			}
			cs.Instances++
			summary.Rows++
		}
		summary.Clusters = append(summary.Clusters, cs)
	}

	return summary, nil
}

// Collect runs the reporter and returns all rows in memory.
func (r *Reporter) Collect(ctx context.Context, regions []string) ([]ReportRow, *Summary, error) {
	var rows []ReportRow
	summary, err := r.Run(ctx, regions, func(row ReportRow) error {
		rows = append(rows, row)
		return nil
	})
	return rows, summary, err
}

func (r *Reporter) account(ctx context.Context) (string, error) {
	fetch := func(ctx context.Context) (string, error) {
		return r.provider.CallerAccount(ctx, r.opts.Credentials)
	}
	if r.opts.IdentityCache == nil {
		return fetch(ctx)
	}
	return r.opts.IdentityCache.GetOrFetch(ctx, r.opts.Credentials.Key(), fetch)
}
