/*
Package core provides the inventory report model and the reporter that
builds it from a cloud.Provider, independent of any CLI.
*/

package core

import "fmt"

// Header is the first row of every report.
var Header = []string{"AccountId", "ClusterName", "InstanceID", "InstanceTypes", "Region"}

// ReportRow is one instance of one cluster. Region is the region the instance
// query ran in.
type ReportRow struct {
	AccountID    string
	ClusterName  string
	InstanceID   string
	InstanceType string
	Region       string
}

// Record returns the row as CSV fields, in Header order.
func (r ReportRow) Record() []string {
	return []string{r.AccountID, r.ClusterName, r.InstanceID, r.InstanceType, r.Region}
}

// Target is a cluster paired with the region its instances are queried in.
type Target struct {
	Region  string
	Cluster string
}

// Scope selects how clusters are paired with regions.
type Scope string

const (
	// ScopePerRegion queries each cluster in the region that listed it.
	ScopePerRegion Scope = "per-region"
	// ScopeLastRegion lists clusters only in the last configured region and
	// queries every cluster there, reproducing the legacy inventory script.
	ScopeLastRegion Scope = "last-region"
)

// ParseScope validates s as a Scope. Empty selects ScopePerRegion.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopePerRegion:
		return ScopePerRegion, nil
	case ScopeLastRegion:
		return ScopeLastRegion, nil
	default:
		return "", fmt.Errorf("unknown region scope %q (want %s or %s)", s, ScopePerRegion, ScopeLastRegion)
	}
}

// ClusterSummary counts the rows emitted for one target.
type ClusterSummary struct {
	Region    string `json:"region"`
	Cluster   string `json:"cluster"`
	Instances int    `json:"instances"`
}

// Summary describes a completed run.
type Summary struct {
	AccountID string           `json:"accountId,omitempty"`
	Clusters  []ClusterSummary `json:"clusters"`
	Rows      int              `json:"rows"`
	// Skipped counts instances returned by the query that lacked the
	// cluster's ownership marker.
	Skipped int `json:"skipped"`
}
