package waylib

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	// fsTargetDir is the 'active' directory with database files of an
	// offline database. Everything else inside the base directory is ok
	// to be removed at any given moment in time.
	fsTargetDir = "target"

	// fsTempDirPrefix marks directories populated during an update.
	// A database downloads into a temporary directory first; the old
	// target is dropped and the temporary one is renamed into the new
	// target only when the download fully succeeded.
	fsTempDirPrefix = "tmp_"
)

// Updater keeps the files of an OfflineDatabase fresh: it opens an
// already downloaded target directory on start and re-downloads every
// UpdateEvery interval.
type Updater struct {
	ctx      context.Context
	cancel   context.CancelFunc
	logger   Logger
	database OfflineDatabase
	stats    *UsageStats
	fs       afero.Afero
}

func (u *Updater) start() error {
	if err := u.cleanup(); err != nil {
		return fmt.Errorf("cannot do an initial cleaning: %w", err)
	}

	exists, err := u.fs.DirExists(fsTargetDir)
	if err != nil {
		return fmt.Errorf("cannot detect target dir: %w", err)
	}

	if exists {
		if err := u.database.Open(afero.NewBasePathFs(u.fs.Fs, fsTargetDir)); err != nil {
			return fmt.Errorf("cannot open target dir: %w", err)
		}
	}

	go u.bgUpdate()

	return nil
}

func (u *Updater) Shutdown() {
	u.cancel()
}

func (u *Updater) cleanup() error {
	infos, err := u.fs.ReadDir("/")
	if err != nil {
		return fmt.Errorf("cannot read the base directory: %w", err)
	}

	for _, v := range infos {
		if v.IsDir() && v.Name() == fsTargetDir {
			continue
		}

		if err := u.fs.RemoveAll(v.Name()); err != nil {
			return fmt.Errorf("cannot delete %s: %w", v.Name(), err)
		}
	}

	return nil
}

func (u *Updater) bgUpdate() {
	timer := time.NewTicker(u.database.UpdateEvery())
	defer timer.Stop()

	u.update()

	for {
		select {
		case <-u.ctx.Done():
			return
		case <-timer.C:
			u.update()
		}
	}
}

func (u *Updater) update() {
	if err := u.doUpdate(); err != nil {
		u.logger.UpdateError(u.database.Name(), err)

		return
	}

	if u.stats != nil {
		u.stats.Updated()
	}

	u.logger.UpdateInfo(u.database.Name(), "db has been updated")
}

func (u *Updater) doUpdate() error {
	tmpDir, err := u.fs.TempDir("/", fsTempDirPrefix)
	if err != nil {
		return fmt.Errorf("cannot create a temporary directory: %w", err)
	}

	tmpDir = strings.TrimPrefix(tmpDir, "/")

	defer u.fs.RemoveAll(tmpDir) // nolint: errcheck

	tmpFs := afero.Afero{Fs: afero.NewBasePathFs(u.fs.Fs, tmpDir)}

	if err := u.database.Download(u.ctx, tmpFs); err != nil {
		return fmt.Errorf("cannot download to tmp directory: %w", err)
	}

	if err := u.fs.RemoveAll(fsTargetDir); err != nil {
		return fmt.Errorf("cannot remove current target dir: %w", err)
	}

	if err := u.fs.Rename(tmpDir, fsTargetDir); err != nil {
		return fmt.Errorf("cannot rename tmp dir to target one: %w", err)
	}

	if err := u.database.Open(afero.NewBasePathFs(u.fs.Fs, fsTargetDir)); err != nil {
		return fmt.Errorf("cannot open a target dir: %w", err)
	}

	return nil
}

// NewUpdater manages database files under the database's base
// directory. stats may be nil. The updater does not own the database:
// shutting it down only stops the background refresh.
func NewUpdater(database OfflineDatabase, logger Logger, stats *UsageStats) (*Updater, error) {
	baseFs := afero.NewBasePathFs(afero.NewOsFs(), database.BaseDirectory())
	ctx, cancel := context.WithCancel(context.Background())

	updater := &Updater{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		database: database,
		stats:    stats,
		fs:       afero.Afero{Fs: baseFs},
	}

	if err := updater.start(); err != nil {
		cancel()

		return nil, err
	}

	return updater, nil
}
