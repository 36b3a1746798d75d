package cloud

import "strings"

// OwnershipTagPrefix is the tag key prefix EKS (and the AWS cloud provider)
// places on instances that belong to a cluster.
const OwnershipTagPrefix = "kubernetes.io/cluster/"

// gkeClusterLabel is the label GKE sets on node VMs.
const gkeClusterLabel = "goog-k8s-cluster-name"

// CredentialsContext selects the credentials and account a provider operates
// on. It is passed by value into every call and never mutated.
type CredentialsContext struct {
	Provider    string
	Profile     string // AWS shared config profile; empty uses the default chain
	Project     string // GCP project ID
	EndpointURL string // overrides AWS service endpoints (LocalStack, tests)
}

// Key identifies the account these credentials resolve to, for caching.
func (c CredentialsContext) Key() string {
	return strings.Join([]string{c.Provider, c.Profile, c.Project, c.EndpointURL}, "|")
}

// Instance holds the compute instance fields the inventory needs.
type Instance struct {
	ID       string
	Type     string
	Provider string            // provider that returned the instance; empty means aws
	Tags     map[string]string // AWS tags or GCE labels
}

// OwnershipTagKey returns the tag key marking an instance as part of cluster.
func OwnershipTagKey(cluster string) string {
	return OwnershipTagPrefix + cluster
}

// OwnedBy reports whether the instance carries its provider's ownership
// marker for cluster: the GKE cluster-name label on GCE, otherwise the
// kubernetes.io/cluster/<name> tag key.
func (i Instance) OwnedBy(cluster string) bool {
	if i.Provider == ProviderGCE {
		return i.Tags[gkeClusterLabel] == cluster
	}
	_, ok := i.Tags[OwnershipTagKey(cluster)]
	return ok
}
