package cloud

import (
	"context"
	"sort"
)

// ClusterLister lists the managed Kubernetes clusters visible in a region.
type ClusterLister interface {
	ListClusters(ctx context.Context, creds CredentialsContext, region string) ([]string, error)
}

// IdentityResolver returns the account the credentials belong to. The result
// does not depend on any region.
type IdentityResolver interface {
	CallerAccount(ctx context.Context, creds CredentialsContext) (string, error)
}

// InstanceFinder returns the live (pending or running) instances owned by a
// cluster in a region.
type InstanceFinder interface {
	ClusterInstances(ctx context.Context, creds CredentialsContext, region, cluster string) ([]Instance, error)
}

// Provider is implemented by cloud providers capable of backing an inventory run.
type Provider interface {
	ClusterLister
	IdentityResolver
	InstanceFinder
}

// ProviderFactory creates a new Provider instance.
type ProviderFactory func() Provider

// Provider names accepted by --provider.
const (
	ProviderAWS = "aws"
	ProviderGCE = "gce"
)

var providerRegistry = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory under the given name.
// It is typically called from init() functions in provider-specific files.
func RegisterProvider(name string, factory ProviderFactory) {
	providerRegistry[name] = factory
}

// LookupProvider returns a Provider implementation for the given provider name.
// Unknown providers return nil.
func LookupProvider(name string) Provider {
	if factory, ok := providerRegistry[name]; ok {
		return factory()
	}
	return nil
}

// ProviderNames returns the registered provider names, sorted.
func ProviderNames() []string {
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
