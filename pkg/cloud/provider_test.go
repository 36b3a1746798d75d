package cloud

import (
	"context"
	"testing"
)

func TestLookupProvider_Registered(t *testing.T) {
	if _, ok := LookupProvider(ProviderAWS).(*awsProvider); !ok {
		t.Errorf("expected aws provider to be registered")
	}
	if _, ok := LookupProvider(ProviderGCE).(*gceProvider); !ok {
		t.Errorf("expected gce provider to be registered")
	}
}

func TestLookupProvider_UnknownProviderReturnsNil(t *testing.T) {
	if p := LookupProvider("non-existent-provider"); p != nil {
		t.Fatalf("expected nil provider for unknown name, got %#v", p)
	}
}

func TestProviderNamesSorted(t *testing.T) {
	names := ProviderNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("ProviderNames not sorted: %v", names)
		}
	}

	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen[ProviderAWS] || !seen[ProviderGCE] {
		t.Fatalf("ProviderNames = %v, want aws and gce present", names)
	}
}

func TestInstanceOwnedBy(t *testing.T) {
	tests := []struct {
		name     string
		instance Instance
		cluster  string
		want     bool
	}{
		{
			name:     "aws ownership tag",
			instance: Instance{Tags: map[string]string{"kubernetes.io/cluster/demo": "owned"}},
			cluster:  "demo",
			want:     true,
		},
		{
			name:     "aws shared tag with empty value",
			instance: Instance{Tags: map[string]string{"kubernetes.io/cluster/demo": ""}},
			cluster:  "demo",
			want:     true,
		},
		{
			name:     "tag for another cluster",
			instance: Instance{Tags: map[string]string{"kubernetes.io/cluster/other": "owned"}},
			cluster:  "demo",
			want:     false,
		},
		{
			name: "gke label",
			instance: Instance{
				Provider: ProviderGCE,
				Tags:     map[string]string{"goog-k8s-cluster-name": "demo"},
			},
			cluster: "demo",
			want:    true,
		},
		{
			name: "gke label on an aws instance",
			instance: Instance{
				Provider: ProviderAWS,
				Tags:     map[string]string{"goog-k8s-cluster-name": "demo"},
			},
			cluster: "demo",
			want:    false,
		},
		{
			name: "aws tag on a gce instance",
			instance: Instance{
				Provider: ProviderGCE,
				Tags:     map[string]string{"kubernetes.io/cluster/demo": "owned"},
			},
			cluster: "demo",
			want:    false,
		},
		{
			name: "gke label for another cluster",
			instance: Instance{
				Provider: ProviderGCE,
				Tags:     map[string]string{"goog-k8s-cluster-name": "other"},
			},
			cluster: "demo",
			want:    false,
		},
		{
			name:     "no tags",
			instance: Instance{},
			cluster:  "demo",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.instance.OwnedBy(tt.cluster); got != tt.want {
				t.Errorf("OwnedBy(%q) = %v, want %v", tt.cluster, got, tt.want)
			}
		})
	}
}

func TestCredentialsContextKey(t *testing.T) {
	a := CredentialsContext{Provider: ProviderAWS, Profile: "prod"}
	b := CredentialsContext{Provider: ProviderAWS, Profile: "dev"}
	if a.Key() == b.Key() {
		t.Errorf("different profiles share cache key %q", a.Key())
	}
	if a.Key() != (CredentialsContext{Provider: ProviderAWS, Profile: "prod"}).Key() {
		t.Errorf("equal contexts produce different keys")
	}
}

func TestGCERequiresProject(t *testing.T) {
	p := &gceProvider{}
	ctx := context.Background()
	creds := CredentialsContext{Provider: ProviderGCE}

	if _, err := p.CallerAccount(ctx, creds); err != errNoProject {
		t.Errorf("CallerAccount error = %v, want %v", err, errNoProject)
	}
	if _, err := p.ListClusters(ctx, creds, "us-central1"); err != errNoProject {
		t.Errorf("ListClusters error = %v, want %v", err, errNoProject)
	}
	if _, err := p.ClusterInstances(ctx, creds, "us-central1", "demo"); err != errNoProject {
		t.Errorf("ClusterInstances error = %v, want %v", err, errNoProject)
	}

	creds.Project = "my-project"
	account, err := p.CallerAccount(ctx, creds)
	if err != nil || account != "my-project" {
		t.Errorf("CallerAccount = %q, %v; want my-project", account, err)
	}
}
