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
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// rollingLogFile is the rotating file both the per-job and daemon-wide
// loggers write through: once the current file exceeds maxSize bytes it's
// renamed with a numeric suffix and a fresh file opened in its place,
// mirroring cupsd's own error_log/page_log rotation. Unlike the original,
// this keeps only the newest maxBackups rotated files around — a spool
// directory accumulating one rotated file per job forever would otherwise
// never shrink.
type rollingLogFile struct {
	filePath    string
	file        *os.File
	l           sync.RWMutex
	nextSuffix  int32
	currentSize uint64
	maxSize     uint64
	maxBackups  int
}

// NewRotatingWriter opens (creating if necessary) the log file at
// filePath, rotating it once its size would exceed maxSize and retaining
// at most maxBackups rotated copies.
func NewRotatingWriter(filePath string, maxSize uint64, maxBackups int) (io.WriteCloser, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, DEFAULT_FILE_PERM)
	if err != nil {
		return nil, err
	}

	return &rollingLogFile{
		file:       file,
		filePath:   filePath,
		maxSize:    maxSize,
		maxBackups: maxBackups,
	}, nil
}

// rotate renames the current file to filePath.N and opens a replacement,
// then deletes whichever rotated file is now the oldest beyond
// maxBackups. Called with w.l read-locked by Write; it drops the read lock,
// rotates under the write lock, and returns with the read lock held again.
func (w *rollingLogFile) rotate(suffix int32) error {
	w.l.RUnlock()
	defer w.l.RLock()

	w.l.Lock()
	defer w.l.Unlock()

	if atomic.LoadInt32(&w.nextSuffix) > suffix {
		// another writer already rotated past this point
		return nil
	}

	if err := w.file.Close(); err != nil {
		return err
	}

	rotated := fmt.Sprintf("%s.%d", w.filePath, w.nextSuffix)
	if err := os.Rename(w.filePath, rotated); err != nil {
		return err
	}

	atomic.AddInt32(&w.nextSuffix, 1)
	atomic.StoreUint64(&w.currentSize, 0)

	file, err := os.OpenFile(w.filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, DEFAULT_FILE_PERM)
	if err != nil {
		return err
	}
	w.file = file

	w.pruneOldBackups()
	return nil
}

// pruneOldBackups removes rotated files older than the newest maxBackups.
// maxBackups <= 0 means keep every rotated file, matching cupsd's default
// of never discarding rotated logs on its own.
func (w *rollingLogFile) pruneOldBackups() {
	if w.maxBackups <= 0 {
		return
	}
	oldest := int(atomic.LoadInt32(&w.nextSuffix)) - w.maxBackups - 1
	if oldest < 0 {
		return
	}
	_ = os.Remove(fmt.Sprintf("%s.%d", w.filePath, oldest))
}

func (w *rollingLogFile) Close() error {
	return w.file.Close()
}

func (w *rollingLogFile) Write(p []byte) (n int, err error) {
	w.l.RLock()
	defer w.l.RUnlock()

	// currSuffix is captured before the size check so a concurrent writer
	// that rotates first doesn't cause this one to rotate again.
	currSuffix := atomic.LoadInt32(&w.nextSuffix)
	if atomic.AddUint64(&w.currentSize, uint64(len(p))) <= w.maxSize {
		return w.file.Write(p)
	}

	atomic.AddUint64(&w.currentSize, -uint64(len(p)))

	if err := w.rotate(currSuffix); err != nil {
		return 0, err
	}

	atomic.AddUint64(&w.currentSize, uint64(len(p)))
	return w.file.Write(p)
}
