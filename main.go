package main

import (
	"net/http"
	"os"
	"time"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/wayfinder-io/wayfinder/providers"
	"github.com/wayfinder-io/wayfinder/waylib"
)

const version = "0.1.0"

var (
	app = kingpin.New(
		"wayfinder",
		"A service which redirects clients to the geographically nearest replica host.")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("WAYFINDER_DEBUG").
		Bool()
	configFile = app.Arg("config-path", "Path to the config.").
			Required().
			File()
)

func init() {
	app.Version(version)
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log := newLogger(*debug)

	conf, err := parseConfig(*configFile)
	if err != nil {
		app.Fatalf("cannot parse config: %v", err)
	}

	rootCtx, cancel := makeRootContext()
	defer cancel()

	resolver, err := providers.NewNetResolver(int(conf.ResolverCacheSize))
	if err != nil {
		app.Fatalf("cannot build a resolver: %v", err)
	}

	v4, err := makeDatabase(conf, conf.Databases.V4, "v4")
	if err != nil {
		app.Fatalf("cannot build a v4 database: %v", err)
	}

	v6, err := makeDatabase(conf, conf.Databases.V6, "v6")
	if err != nil {
		app.Fatalf("cannot build a v6 database: %v", err)
	}

	if conf.AddrCache.Size > 0 {
		v4 = wrapWithCache(v4, conf)
		v6 = wrapWithCache(v6, conf)
	}

	locator := waylib.NewLocator(v4, v6, resolver, log)

	for i, db := range []waylib.Database{v4, v6} {
		offline, ok := db.(waylib.OfflineDatabase)
		if !ok {
			continue
		}

		updater, err := waylib.NewUpdater(offline, log, locator.UsageStats()[i])
		if err != nil {
			app.Fatalf("cannot start an updater: %v", err)
		}

		defer updater.Shutdown()
		defer offline.Shutdown()
	}

	wayfinder, err := waylib.NewWayfinder(locator, log, conf.GetWorkerPoolSize())
	if err != nil {
		app.Fatalf("cannot build a wayfinder: %v", err)
	}

	defer wayfinder.Shutdown()

	srv := &http.Server{
		Addr:    conf.GetListen(),
		Handler: waylib.NewHTTPHandler(wayfinder, nil),
	}

	go func() {
		<-rootCtx.Done()
		srv.Shutdown(rootCtx) // nolint: errcheck
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.Fatalf("server has failed: %v", err)
	}

	// let inflight lookups finish before databases shut down
	time.Sleep(100 * time.Millisecond)
}
