// Copyright © 2026 printsched contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package config parses the daemon's directive file, a flat "Directive
// Value" format in cupsd.conf's style (one directive per line, "#" starts a
// comment, blank lines ignored). It never talks to the subsystems it
// configures; the cmd package turns a parsed File into a daemon.Config.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// File is the parsed set of directives. Unrecognized directives are kept in
// Unknown rather than rejected outright, matching cupsd's tolerance of
// directives a given build doesn't implement.
type File struct {
	Listen             string
	LogLevel           string
	MaxJobsPerUser     int
	MaxJobsPerPrinter  int
	FilterLimit        int
	FilterRateLimit    int
	PreserveJobHistory bool
	BrowseInterval     time.Duration
	BrowseTimeout      time.Duration
	SpoolDir           string
	BannerDir          string
	AdminGroup         string
	HighCPUPercent     float64
	HighMemPercent     float64

	Unknown map[string]string
}

// Default returns the directive set the daemon falls back to when no
// directive file is given, or a directive is absent from one that was.
func Default() File {
	return File{
		Listen:             "localhost:631",
		LogLevel:           "info",
		MaxJobsPerUser:     0,
		MaxJobsPerPrinter:  0,
		FilterLimit:        200,
		FilterRateLimit:    0,
		PreserveJobHistory: true,
		BrowseInterval:     30 * time.Second,
		BrowseTimeout:      90 * time.Second,
		SpoolDir:           "/var/spool/printsched",
		BannerDir:          "/usr/share/printsched/banners",
		AdminGroup:         "lpadmin",
		HighCPUPercent:     90,
		HighMemPercent:     90,
		Unknown:            map[string]string{},
	}
}

// Load reads path on top of Default, returning the merged result. A missing
// directive in the file leaves the default in place.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads directives from r on top of Default.
func Parse(r io.Reader) (File, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		directive := fields[0]
		value := ""
		if len(fields) == 2 {
			value = strings.TrimSpace(fields[1])
		}
		if err := cfg.apply(directive, value); err != nil {
			return File{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

func (cfg *File) apply(directive, value string) error {
	switch strings.ToLower(directive) {
	case "listen":
		cfg.Listen = value
	case "loglevel":
		cfg.LogLevel = value
	case "maxjobsperuser":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("MaxJobsPerUser: %w", err)
		}
		cfg.MaxJobsPerUser = n
	case "maxjobsperprinter":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("MaxJobsPerPrinter: %w", err)
		}
		cfg.MaxJobsPerPrinter = n
	case "filterlimit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("FilterLimit: %w", err)
		}
		cfg.FilterLimit = n
	case "filteratelimit", "filterratelimit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("FilterRateLimit: %w", err)
		}
		cfg.FilterRateLimit = n
	case "preservejobhistory":
		cfg.PreserveJobHistory = isYes(value)
	case "browseinterval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("BrowseInterval: %w", err)
		}
		cfg.BrowseInterval = d
	case "browsetimeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("BrowseTimeout: %w", err)
		}
		cfg.BrowseTimeout = d
	case "requestroot", "spooldir":
		cfg.SpoolDir = value
	case "bannerdir", "docroot":
		cfg.BannerDir = value
	case "systemgroup", "admingroup":
		cfg.AdminGroup = value
	case "highcpupercent":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("HighCPUPercent: %w", err)
		}
		cfg.HighCPUPercent = v
	case "highmempercent":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("HighMemPercent: %w", err)
		}
		cfg.HighMemPercent = v
	default:
		cfg.Unknown[directive] = value
	}
	return nil
}

func isYes(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "true", "on", "1":
		return true
	default:
		return false
	}
}
