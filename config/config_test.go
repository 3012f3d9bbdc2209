package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAppliesKnownDirectivesOverDefaults(t *testing.T) {
	a := assert.New(t)
	src := strings.NewReader(`
# comment line
Listen printer.example.com:631
LogLevel debug
MaxJobsPerUser 10
FilterLimit 50
BrowseInterval 15s
PreserveJobHistory No
`)
	cfg, err := Parse(src)
	a.NoError(err)
	a.Equal("printer.example.com:631", cfg.Listen)
	a.Equal("debug", cfg.LogLevel)
	a.Equal(10, cfg.MaxJobsPerUser)
	a.Equal(50, cfg.FilterLimit)
	a.Equal(15*time.Second, cfg.BrowseInterval)
	a.False(cfg.PreserveJobHistory)
}

func TestParseLeavesDefaultsForOmittedDirectives(t *testing.T) {
	a := assert.New(t)
	cfg, err := Parse(strings.NewReader("Listen localhost:9631\n"))
	a.NoError(err)
	a.Equal("localhost:9631", cfg.Listen)
	a.Equal(Default().MaxJobsPerPrinter, cfg.MaxJobsPerPrinter)
	a.Equal(Default().AdminGroup, cfg.AdminGroup)
}

func TestParseKeepsUnrecognizedDirectivesInUnknown(t *testing.T) {
	a := assert.New(t)
	cfg, err := Parse(strings.NewReader("SomeFutureDirective banana\n"))
	a.NoError(err)
	a.Equal("banana", cfg.Unknown["SomeFutureDirective"])
}

func TestParseRejectsMalformedIntegerDirective(t *testing.T) {
	a := assert.New(t)
	_, err := Parse(strings.NewReader("MaxJobsPerUser notanumber\n"))
	a.Error(err)
}
