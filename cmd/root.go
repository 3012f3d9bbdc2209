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

// Package cmd wires the "run" subcommand's cobra.Command flags onto a
// daemon.Config and a daemon.Daemon, the way the teacher's own cmd/root.go
// wires its flags onto package-level transfer configuration.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/config"
	"github.com/inkwell/printsched/daemon"
	"github.com/inkwell/printsched/mimeconv"
)

// Exit codes, spec §6: 0 success; 1 configuration/startup error; 2/3 child
// unexpected exit during daemonize; errno+100 when an exec fails in the
// child.
const (
	ExitSuccess       = 0
	ExitStartupError  = 1
	ExitChildExitedA  = 2
	ExitChildExitedB  = 3
	ExitExecErrorBase = 100
)

type runFlags struct {
	configPath     string
	filesConfPath  string
	foreground     bool
	foregroundNoTTY bool
	onDemand       bool
	testConfig     bool
	securityProfile bool
	noSandbox      bool
}

// NewRootCommand builds the single "run" subcommand spec.md §6 describes,
// plus its flags.
func NewRootCommand() *cobra.Command {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:   "printsched",
		Short: "print scheduling daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(flags)
		},
		SilenceUsage: true,
	}

	pf := root.Flags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to the directive file")
	pf.StringVarP(&flags.filesConfPath, "files-config", "s", "", "path to the cups-files.conf-equivalent directive file")
	pf.BoolVarP(&flags.foreground, "foreground", "f", false, "run in the foreground")
	pf.BoolVarP(&flags.foregroundNoTTY, "foreground-no-tty", "F", false, "run in the foreground, detached from the controlling terminal")
	pf.BoolVarP(&flags.onDemand, "on-demand", "l", false, "run on-demand (launchd/systemd socket activation style)")
	pf.BoolVarP(&flags.testConfig, "test-config", "t", false, "test the configuration and exit")
	pf.BoolVarP(&flags.securityProfile, "security-profile", "T", false, "emit the security profile and exit")
	pf.BoolVarP(&flags.noSandbox, "no-sandbox", "P", false, "disable sandboxing (test use only)")

	return root
}

// Execute runs the root command and converts a returned error into the
// matching exit code, per spec §6.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "printsched:", err)
		return ExitStartupError
	}
	return ExitSuccess
}

func runDaemon(flags *runFlags) error {
	file := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", flags.configPath, err)
		}
		file = loaded
	}
	if flags.filesConfPath != "" {
		overlay, err := config.Load(flags.filesConfPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", flags.filesConfPath, err)
		}
		file = mergeFilesConf(file, overlay)
	}

	if flags.securityProfile {
		emitSecurityProfile(flags.noSandbox)
		return nil
	}
	if flags.testConfig {
		fmt.Fprintf(os.Stdout, "configuration OK: listen=%s spool=%s filter-limit=%d\n",
			file.Listen, file.SpoolDir, file.FilterLimit)
		return nil
	}

	var level common.LogLevel
	if err := level.Parse(file.LogLevel); err != nil {
		level = common.ELogLevel.Info()
	}
	logger, err := common.NewErrorLogger(level, file.SpoolDir+"/error_log")
	if err != nil {
		return fmt.Errorf("opening error log: %w", err)
	}
	defer logger.CloseLog()

	confirm := flags.foreground && !flags.foregroundNoTTY && isTerminal(os.Stdin)
	if confirm {
		common.SetUIHooks(terminalUIHooks())
	}

	conv, err := loadConverter(file)
	if err != nil {
		return fmt.Errorf("loading MIME conversion table: %w", err)
	}

	cfg := daemon.Config{
		SpoolDir:           file.SpoolDir,
		BannerDir:          file.BannerDir,
		BannerMimeType:     "application/postscript",
		AdminGroup:         file.AdminGroup,
		MaxJobsPerUser:     file.MaxJobsPerUser,
		MaxJobsPerPrinter:  file.MaxJobsPerPrinter,
		FilterCostLimit:    file.FilterLimit,
		FilterRateLimit:    file.FilterRateLimit,
		RetainedJobs:       1000,
		BrowseTimeout:      file.BrowseTimeout,
		HighCPUPercent:     file.HighCPUPercent,
		HighMemPercent:     file.HighMemPercent,
		ConfirmDestructive: confirm,
	}

	d := daemon.New(cfg, conv, logger)

	stopSampling := make(chan struct{})
	go d.Pressure.StartSampling(5*time.Second, stopSampling)
	defer close(stopSampling)

	// ScheduleAt only fires once, so admission keeps running by having each
	// firing re-arm the next one; RunAdmission's own RunUntilStop-driven
	// SIGCHLD hook (daemon.onReap) covers the in-between case where a
	// destination frees up before this tick comes due.
	const admissionInterval = time.Second
	var scheduleAdmission func(time.Time)
	scheduleAdmission = func(time.Time) {
		d.RunAdmission()
		d.Loop.ScheduleAt(time.Now().Add(admissionInterval), scheduleAdmission)
	}
	d.Loop.ScheduleAt(time.Now().Add(admissionInterval), scheduleAdmission)

	d.Loop.RunUntilStop()
	return nil
}

// mergeFilesConf overlays the cups-files.conf-equivalent directives
// (spool/banner paths, admin group) onto the main directive set; the two
// files are kept separate, as cupsd itself splits security-relevant paths
// into cups-files.conf so they can carry tighter filesystem permissions.
func mergeFilesConf(base, overlay config.File) config.File {
	if overlay.SpoolDir != config.Default().SpoolDir {
		base.SpoolDir = overlay.SpoolDir
	}
	if overlay.BannerDir != config.Default().BannerDir {
		base.BannerDir = overlay.BannerDir
	}
	if overlay.AdminGroup != config.Default().AdminGroup {
		base.AdminGroup = overlay.AdminGroup
	}
	return base
}

func loadConverter(file config.File) (*mimeconv.Table, error) {
	path := file.Unknown["MimeConvs"]
	if path == "" {
		return mimeconv.NewTable(), nil
	}
	return mimeconv.Load(path)
}

func emitSecurityProfile(noSandbox bool) {
	fmt.Println("sandboxing:", !noSandbox)
	fmt.Println("capabilities: CAP_CHOWN, CAP_SETUID, CAP_SETGID (filter/backend spawn only)")
	fmt.Println("filesystem: spool directory read-write, banner directory read-only")
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// terminalUIHooks prompts on stdin/stdout for the confirmations
// dispatch.Dispatcher.ConfirmDestructive asks for.
func terminalUIHooks() *common.JobUIHooks {
	reader := bufio.NewReader(os.Stdin)
	h := common.NewJobUIHooks()
	h.Prompt = func(message string, details common.PromptDetails) common.ResponseOption {
		fmt.Fprintf(os.Stdout, "%s [y/N] ", message)
		line, _ := reader.ReadString('\n')
		for _, opt := range details.ResponseOptions {
			if opt.ResponseString != "" && len(line) > 0 && line[0] == opt.ResponseString[0] {
				return opt
			}
		}
		return common.EResponseOption.No()
	}
	h.Warn = func(msg string) { fmt.Fprintln(os.Stderr, "warning:", msg) }
	h.Info = func(msg string) { fmt.Fprintln(os.Stdout, msg) }
	return h
}
