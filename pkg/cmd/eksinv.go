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

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab.com/davidxarnold/eksinv/pkg/cloud"
	"gitlab.com/davidxarnold/eksinv/pkg/core"
	"gitlab.com/davidxarnold/eksinv/pkg/util"
	v "gitlab.com/davidxarnold/eksinv/version"
)

var defaultRegions = []string{"us-east-2", "us-east-1"}

var cfgFile string

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			log.Fatalln(err)
		}

		// Search config in home directory with name ".eksinv" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".eksinv")
	}

	viper.SetEnvPrefix("eksinv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugln("Using config file:", viper.ConfigFileUsed())
	}
}

// Settings is the resolved configuration of one inventory run.
type Settings struct {
	Regions     []string
	Credentials cloud.CredentialsContext
	Scope       core.Scope
	OutputDir   string
	Output      string
	CacheTTL    time.Duration
	CacheOnDisk bool
}

// settingsFromViper reads Settings from flags, environment and config file.
func settingsFromViper() (*Settings, error) {
	scope, err := core.ParseScope(viper.GetString("region-scope"))
	if err != nil {
		return nil, err
	}

	var regions []string
	for _, r := range viper.GetStringSlice("regions") {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return nil, core.ErrNoRegions
	}

	s := &Settings{
		Regions: regions,
		Credentials: cloud.CredentialsContext{
			Provider:    viper.GetString("provider"),
			Profile:     viper.GetString("profile"),
			Project:     viper.GetString("project"),
			EndpointURL: viper.GetString("endpoint-url"),
		},
		Scope:       scope,
		OutputDir:   viper.GetString("output-dir"),
		Output:      strings.ToLower(viper.GetString("output")),
		CacheTTL:    viper.GetDuration("identity-cache-ttl"),
		CacheOnDisk: viper.GetBool("identity-cache-disk"),
	}
	if s.OutputDir == "" {
		s.OutputDir = "."
	}
	return s, nil
}

// NewInventoryCmd provides a cobra command
func NewInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eksinv",
		Short: "Report the nodes of your EKS clusters as CSV.",
		Long: "eksinv lists the EKS clusters in each configured region, finds the pending and running " +
			"EC2 instances tagged as belonging to each cluster, and writes one row per instance to " +
			"eks-node-<YYYYMMDD-HHMMSS>.csv.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.SetupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFromViper()
			if err != nil {
				return err
			}
			return RunInventory(cmd.Context(), s, time.Now(), cmd.OutOrStdout())
		},
	}

	cmd.Version = v.Version

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.eksinv.yaml)")
	cmd.PersistentFlags().StringSlice("regions", defaultRegions, "Regions to inventory, in order.")
	cmd.PersistentFlags().String("provider", cloud.ProviderAWS,
		"Cloud provider. One of: "+strings.Join(cloud.ProviderNames(), "|"))
	cmd.PersistentFlags().String("profile", "", "AWS shared config profile (default credential chain when empty)")
	cmd.PersistentFlags().String("project", "", "GCP project (gce provider only)")
	cmd.PersistentFlags().String("endpoint-url", "", "Override the AWS service endpoint (e.g. LocalStack)")
	cmd.PersistentFlags().String("region-scope", string(core.ScopePerRegion),
		"per-region: query each cluster in its own region. "+
			"last-region: list clusters in the last region only and query them there (legacy behaviour)")
	cmd.PersistentFlags().String("output-dir", ".", "Directory the report is written to")
	cmd.PersistentFlags().StringP("output", "o", "txt", "-o, --output='': Output format. One of: txt|json|pretty")
	cmd.PersistentFlags().Duration("identity-cache-ttl", 0,
		"Reuse a resolved account identity for this long (0 disables)")
	cmd.PersistentFlags().Bool("identity-cache-disk", false,
		"Persist the identity cache to $HOME/.eksinv/identity-cache.json")
	cmd.PersistentFlags().String("log-level", "info", "Log level. One of: debug|info|warn|error")

	cobra.OnInitialize(initConfig)

	_ = viper.BindPFlags(cmd.PersistentFlags())

	return cmd
}

// RunInventory writes the report for s to s.OutputDir and prints a summary to
// out. The report file only appears under its final name if the run succeeds.
func RunInventory(ctx context.Context, s *Settings, now time.Time, out io.Writer) (err error) {
	provider := cloud.LookupProvider(s.Credentials.Provider)
	if provider == nil {
		return fmt.Errorf("unknown provider %q (want one of %s)",
			s.Credentials.Provider, strings.Join(cloud.ProviderNames(), ", "))
	}

	opts := core.ReporterOptions{
		Credentials: s.Credentials,
		Scope:       s.Scope,
	}
	if s.CacheTTL > 0 {
		opts.IdentityCache = cloud.NewCache(s.CacheTTL, s.CacheOnDisk)
	}
	reporter := core.NewReporter(provider, opts)

	rf, err := createReportFile(s.OutputDir, util.ReportFilename(now))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rf.Abort()
		}
	}()

	rw, err := core.NewReportWriter(rf)
	if err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	log.WithFields(log.Fields{
		"Provider": s.Credentials.Provider,
		"Regions":  strings.Join(s.Regions, ","),
		"Scope":    s.Scope,
	}).Debug("starting inventory")

	summary, err := reporter.Run(ctx, s.Regions, rw.Write)
	if err != nil {
		return err
	}
	if err = rw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err = rf.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"Account":  summary.AccountID,
		"Clusters": len(summary.Clusters),
		"Report":   rf.Name(),
	}).Infof("wrote %d instance row(s)", summary.Rows)

	// The report is committed; a summary that cannot be printed does not fail the run.
	if rerr := render(out, s.Output, summary); rerr != nil {
		log.Warnf("failed to print summary: %v", rerr)
	}
	return nil
}
