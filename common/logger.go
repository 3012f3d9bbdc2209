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

package common

import (
	"io"
	"log"
	"path"
	"runtime"
	"time"
)

type ILogger interface {
	ShouldLog(level LogLevel) bool
	Log(level LogLevel, msg string)
	Panic(err error)
}

type ILoggerCloser interface {
	ILogger
	CloseLog()
}

// ILoggerResetable is a logger that can be (re)opened, e.g. when a held job
// is released and starts writing to its job log for the first time.
type ILoggerResetable interface {
	OpenLog()
	MinimumLogLevel() LogLevel
	ILoggerCloser
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

const maxJobLogSize = 64 * 1024 * 1024

// maxLogBackups bounds how many rotated copies of a log file accumulate
// in the spool directory; beyond this the oldest rotated file is removed
// each time a new rotation happens.
const maxLogBackups = 4

// jobLogger is the per-job log file: one file per job, leveled, rotated
// once it exceeds maxJobLogSize.
type jobLogger struct {
	jobID             JobID
	minimumLevelToLog LogLevel
	file              io.WriteCloser
	logFileFolder     string
	logger            *log.Logger
}

// NewJobLogger returns a logger for jobID under logFileFolder. The file is
// not created until OpenLog is called, so a job that is validated but never
// admitted never leaves a log file behind. Passing ELogLevel.None() disables
// the log entirely.
func NewJobLogger(jobID JobID, minimumLevelToLog LogLevel, logFileFolder string) ILoggerResetable {
	return &jobLogger{
		jobID:             jobID,
		minimumLevelToLog: minimumLevelToLog,
		logFileFolder:     logFileFolder,
	}
}

func (jl *jobLogger) OpenLog() {
	if jl.minimumLevelToLog == ELogLevel.None() {
		return
	}

	file, err := NewRotatingWriter(path.Join(jl.logFileFolder, "d"+jl.jobID.String()+".log"), maxJobLogSize, maxLogBackups)
	PanicIfErr(err)

	jl.file = file

	flags := log.LstdFlags | log.LUTC
	jl.logger = log.New(jl.file, "", flags)
	jl.logger.Println("OS-Environment", runtime.GOOS, runtime.GOARCH)
	jl.logger.Println("Log times are in UTC. Local time is", time.Now().Format("2 Jan 2006 15:04:05"))
}

func (jl *jobLogger) MinimumLogLevel() LogLevel {
	return jl.minimumLevelToLog
}

func (jl *jobLogger) ShouldLog(level LogLevel) bool {
	if level == ELogLevel.None() {
		return false
	}
	return level <= jl.minimumLevelToLog
}

func (jl *jobLogger) CloseLog() {
	if jl.minimumLevelToLog == ELogLevel.None() || jl.file == nil {
		return
	}
	jl.logger.Println("Closing Log")
	_ = jl.file.Close()
}

func (jl *jobLogger) Log(level LogLevel, msg string) {
	if jl.ShouldLog(level) {
		jl.logger.Println(level, msg)
	}
}

func (jl *jobLogger) Panic(err error) {
	if jl.logger != nil {
		jl.logger.Println(err)
	}
	panic(err)
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// errorLogger is the daemon-wide log: one rotating file, written to by the
// event loop, access control, process manager and anything else that isn't
// scoped to a single job.
type errorLogger struct {
	minimumLevelToLog LogLevel
	logger            *log.Logger
	file              io.WriteCloser
}

func NewErrorLogger(minimumLevelToLog LogLevel, logFilePath string) (ILoggerCloser, error) {
	if minimumLevelToLog == ELogLevel.None() {
		return &errorLogger{minimumLevelToLog: minimumLevelToLog}, nil
	}
	file, err := NewRotatingWriter(logFilePath, maxJobLogSize, maxLogBackups)
	if err != nil {
		return nil, err
	}
	return &errorLogger{
		minimumLevelToLog: minimumLevelToLog,
		logger:            log.New(file, "", log.LstdFlags|log.LUTC),
		file:              file,
	}, nil
}

func (el *errorLogger) ShouldLog(level LogLevel) bool {
	if level == ELogLevel.None() {
		return false
	}
	return level <= el.minimumLevelToLog
}

func (el *errorLogger) Log(level LogLevel, msg string) {
	if el.ShouldLog(level) {
		el.logger.Println(level, msg)
	}
}

func (el *errorLogger) Panic(err error) {
	if el.logger != nil {
		el.logger.Println(err)
	}
	panic(err)
}

func (el *errorLogger) CloseLog() {
	if el.file != nil {
		_ = el.file.Close()
	}
}

// NullLogger discards everything; used by tests and by any component given
// no explicit logger.
type NullLogger struct{}

func (NullLogger) ShouldLog(LogLevel) bool { return false }
func (NullLogger) Log(LogLevel, string)    {}
func (NullLogger) Panic(err error)         { panic(err) }
func (NullLogger) CloseLog()               {}

var _ ILoggerCloser = NullLogger{}
