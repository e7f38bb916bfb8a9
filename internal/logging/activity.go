package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// ActivityFile is the activity log's name inside the reports folder.
	ActivityFile = "activity.log"

	// backupLayout is the timestamp used in report file names.
	backupLayout  = "20060102-150405"
	backupPrefix  = "activity-"
	backupSuffix  = ".log"
	defaultSizeMB = 10
	defaultKeep   = 3
)

// ActivityOptions bounds the activity log on disk.
type ActivityOptions struct {
	MaxSizeMB  int
	MaxBackups int
	// Now stamps backup names; nil means time.Now.
	Now func() time.Time
}

// ActivityLog is the activity log kept next to the reports. Once it grows
// past MaxSizeMB the file is set aside as activity-<YYYYMMDD-HHMMSS>.log and a
// new one is started; only the newest MaxBackups of those are kept. A run
// that opens an already full log starts on a fresh file.
type ActivityLog struct {
	mu         sync.Mutex
	dir        string
	file       *os.File
	written    int64
	maxSize    int64
	maxBackups int
	now        func() time.Time
}

// OpenActivityLog opens <reportsDir>/activity.log for appending, creating
// the folder if needed.
func OpenActivityLog(reportsDir string, opts ActivityOptions) (*ActivityLog, error) {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = defaultKeep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return nil, fmt.Errorf("create reports folder: %w", err)
	}

	a := &ActivityLog{
		dir:        reportsDir,
		maxSize:    int64(opts.MaxSizeMB) * 1024 * 1024,
		maxBackups: opts.MaxBackups,
		now:        opts.Now,
	}
	if err := a.open(); err != nil {
		return nil, err
	}
	if a.written >= a.maxSize {
		if err := a.rotate(); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// Path returns the active log file.
func (a *ActivityLog) Path() string {
	return filepath.Join(a.dir, ActivityFile)
}

// Write appends p, setting the current file aside first when p would push it
// past the size cap. A single oversized write still lands in one file.
func (a *ActivityLog) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return 0, os.ErrClosed
	}
	if a.written > 0 && a.written+int64(len(p)) > a.maxSize {
		if err := a.rotate(); err != nil {
			return 0, fmt.Errorf("rotate activity log: %w", err)
		}
	}
	n, err := a.file.Write(p)
	a.written += int64(n)
	return n, err
}

// Close closes the active file. Later writes fail with os.ErrClosed.
func (a *ActivityLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// Backups lists the set-aside logs, oldest first.
func (a *ActivityLog) Backups() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(a.dir, backupPrefix+"*"+backupSuffix))
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool {
		ti, si := backupOrder(matches[i])
		tj, sj := backupOrder(matches[j])
		if ti != tj {
			return ti < tj
		}
		return si < sj
	})
	return matches, nil
}

func (a *ActivityLog) open() error {
	f, err := os.OpenFile(a.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat activity log: %w", err)
	}
	a.file = f
	a.written = info.Size()
	return nil
}

func (a *ActivityLog) rotate() error {
	if err := a.file.Close(); err != nil {
		return err
	}
	a.file = nil

	renameErr := os.Rename(a.Path(), a.backupName())
	if renameErr != nil && os.IsNotExist(renameErr) {
		renameErr = nil
	}
	a.prune()
	if err := a.open(); err != nil {
		return err
	}
	return renameErr
}

// backupName picks activity-<stamp>.log, numbering it _2, _3, ... after the
// highest existing backup when several rotations land in the same second.
func (a *ActivityLog) backupName() string {
	stamp := a.now().Format(backupLayout)
	highest := 0
	backups, _ := a.Backups()
	for _, b := range backups {
		if s, seq := backupOrder(b); s == stamp && seq > highest {
			highest = seq
		}
	}
	if highest == 0 {
		return filepath.Join(a.dir, backupPrefix+stamp+backupSuffix)
	}
	return filepath.Join(a.dir, fmt.Sprintf("%s%s_%d%s", backupPrefix, stamp, highest+1, backupSuffix))
}

func (a *ActivityLog) prune() {
	backups, err := a.Backups()
	if err != nil || len(backups) <= a.maxBackups {
		return
	}
	for _, old := range backups[:len(backups)-a.maxBackups] {
		_ = os.Remove(old)
	}
}

// backupOrder splits activity-<stamp>[_<seq>].log into its sort keys.
func backupOrder(path string) (string, int) {
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), backupPrefix), backupSuffix)
	stamp, seq, found := strings.Cut(name, "_")
	if !found {
		return stamp, 1
	}
	n, err := strconv.Atoi(seq)
	if err != nil {
		return stamp, 1
	}
	return stamp, n
}
