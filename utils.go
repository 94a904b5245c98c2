package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wayfinder-io/wayfinder/providers"
	"github.com/wayfinder-io/wayfinder/waylib"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func wrapWithCache(db waylib.Database, conf *config) waylib.Database {
	switch v := db.(type) {
	case nil:
		return nil
	case waylib.OfflineDatabase:
		return waylib.NewCachingOfflineDatabase(v, conf.AddrCache.Size, conf.GetAddrCacheTTL())
	default:
		return waylib.NewCachingDatabase(db, conf.AddrCache.Size, conf.GetAddrCacheTTL())
	}
}

func makeDatabase(conf *config, dbConf configDatabase, family string) (waylib.Database, error) {
	switch dbConf.Type {
	case DatabaseTypeCSV:
		source, err := os.Open(dbConf.Path)
		if err != nil {
			return nil, fmt.Errorf("cannot open a csv file: %w", err)
		}

		defer source.Close()

		return providers.NewCSVDatabase(source)
	case DatabaseTypeMaxmindLite:
		baseDir, err := ensureDir(conf, dbConf, family)
		if err != nil {
			return nil, fmt.Errorf("cannot create base directory for maxmind database: %w", err)
		}

		db, err := providers.NewMaxmindLite(makeNewHTTPClient(dbConf),
			dbConf.GetUpdateEvery(),
			baseDir,
			dbConf.LicenseKey)
		if err != nil {
			return nil, err
		}

		return db, nil
	}

	return nil, nil
}

func makeNewHTTPClient(dbConf configDatabase) waylib.HTTPClient {
	return waylib.NewHTTPClient(&http.Client{Timeout: dbConf.GetHTTPTimeout()},
		"wayfinder/"+version,
		dbConf.GetRateLimitInterval(),
		dbConf.GetRateLimitBurst(),
		3,
		time.Minute,
		time.Minute)
}

func ensureDir(conf *config, dbConf configDatabase, family string) (string, error) {
	dir := filepath.Join(conf.GetRootDirectory(), dbConf.GetDirectory(family))

	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", fmt.Errorf("cannot create a directory %s: %w", dir, err)
	}

	return dir, nil
}
