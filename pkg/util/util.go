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

package util

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	reportPrefix     = "eks-node-"
	reportSuffix     = ".csv"
	reportTimeLayout = "20060102-150405"
)

// SetupLogger sets configuration for the default logger
func SetupLogger() (err error) {
	var (
		lf = strings.ToLower(viper.GetString("output"))
		ll = viper.GetString("log-level")
	)

	// Set log format
	switch lf {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{
			DisableLevelTruncation: true,
		})
	}

	if ll == "" {
		log.SetLevel(log.InfoLevel)
		return nil
	}

	level, err := log.ParseLevel(ll)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", ll, err)
	}
	log.SetLevel(level)
	return nil
}

// ReportFilename returns the report file name for a run started at t,
// e.g. eks-node-20250102-150405.csv. The timestamp is rendered in t's location.
func ReportFilename(t time.Time) string {
	return reportPrefix + t.Format(reportTimeLayout) + reportSuffix
}
