package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	compute "cloud.google.com/go/compute/apiv1"
	computepb "cloud.google.com/go/compute/apiv1/computepb"
	container "cloud.google.com/go/container/apiv1"
	containerpb "cloud.google.com/go/container/apiv1/containerpb"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/proto"
)

var errNoProject = errors.New("gce provider requires a project (--project)")

// GCE statuses equivalent to EC2 pending/running.
var liveGCEStatuses = map[string]bool{
	"PROVISIONING": true,
	"STAGING":      true,
	"RUNNING":      true,
}

// gceProvider implements Provider for GKE clusters and their node VMs.
// The account identity of a GCE run is the project ID.
type gceProvider struct{}

// ListClusters returns the GKE clusters whose location is region or one of
// its zones.
func (p *gceProvider) ListClusters(ctx context.Context, creds CredentialsContext, region string) ([]string, error) {
	if creds.Project == "" {
		return nil, errNoProject
	}

	c, err := container.NewClusterManagerClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GKE client: %w", err)
	}
	defer func() {
		// Best-effort close; ignore error to satisfy staticcheck/errcheck.
		_ = c.Close()
	}()

	resp, err := c.ListClusters(ctx, &containerpb.ListClustersRequest{
		Parent: fmt.Sprintf("projects/%s/locations/-", creds.Project),
	})
	if err != nil {
		return nil, fmt.Errorf("list clusters in %s: %w", region, err)
	}

	var clusters []string
	for _, cl := range resp.GetClusters() {
		if inRegion(cl.GetLocation(), region) {
			clusters = append(clusters, cl.GetName())
		}
	}

	log.Debugf("found %d GKE cluster(s) in %s", len(clusters), region)
	return clusters, nil
}

// CallerAccount returns the configured project.
func (p *gceProvider) CallerAccount(_ context.Context, creds CredentialsContext) (string, error) {
	if creds.Project == "" {
		return "", errNoProject
	}
	return creds.Project, nil
}

// ClusterInstances returns the live node VMs labelled with the cluster name in
// the zones of region.
func (p *gceProvider) ClusterInstances(
	ctx context.Context,
	creds CredentialsContext,
	region, cluster string,
) ([]Instance, error) {
	if creds.Project == "" {
		return nil, errNoProject
	}

	c, err := compute.NewInstancesRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCE client: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()

	it := c.AggregatedList(ctx, &computepb.AggregatedListInstancesRequest{
		Project: creds.Project,
		Filter:  proto.String(clusterLabelFilter(cluster)),
	})

	var instances []Instance
	for {
		pair, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("describe instances for cluster %s in %s: %w", cluster, region, err)
		}
		if !inRegion(strings.TrimPrefix(pair.Key, "zones/"), region) {
			continue
		}
		for _, vm := range pair.Value.GetInstances() {
			if !liveGCEStatuses[vm.GetStatus()] {
				continue
			}
			instances = append(instances, fromGCE(vm))
		}
	}

	log.Debugf("found %d instance(s) for cluster %s in %s", len(instances), cluster, region)
	return instances, nil
}

func fromGCE(vm *computepb.Instance) Instance {
	tags := make(map[string]string, len(vm.GetLabels()))
	for k, v := range vm.GetLabels() {
		tags[k] = v
	}
	return Instance{
		ID:       vm.GetName(),
		Type:     machineTypeName(vm.GetMachineType()),
		Provider: ProviderGCE,
		Tags:     tags,
	}
}

// machineTypeName extracts the machine type from its full URL.
func machineTypeName(url string) string {
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

func clusterLabelFilter(cluster string) string {
	return fmt.Sprintf("labels.%s = %q", gkeClusterLabel, cluster)
}

// inRegion reports whether location (a region such as us-central1 or a zone
// such as us-central1-a) lies in region.
func inRegion(location, region string) bool {
	return location == region || strings.HasPrefix(location, region+"-")
}

// nolint:gochecknoinits // registration-style init keeps provider wiring local to this file.
func init() {
	RegisterProvider(ProviderGCE, func() Provider { return &gceProvider{} })
}
