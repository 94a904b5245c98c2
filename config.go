package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hjson/hjson-go"
)

const (
	DatabaseTypeCSV         = "csv"
	DatabaseTypeMaxmindLite = "maxmind_lite"

	DefaultHTTPTimeout       = 10 * time.Second
	DefaultUpdateEvery       = 24 * time.Hour
	DefaultRateLimitInterval = 100 * time.Millisecond
	DefaultRateLimitBurst    = 10
	DefaultAddrCacheTTL      = time.Hour
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen            string `json:"listen"`
	RootDirectory     string `json:"root_directory"`
	WorkerPoolSize    uint   `json:"worker_pool_size"`
	ResolverCacheSize uint   `json:"resolver_cache_size"`
	AddrCache         struct {
		Size uint     `json:"size"`
		TTL  duration `json:"ttl"`
	} `json:"addr_cache"`
	Databases struct {
		V4 configDatabase `json:"v4"`
		V6 configDatabase `json:"v6"`
	} `json:"databases"`
}

func (c config) GetListen() string {
	return c.Listen
}

func (c config) GetRootDirectory() string {
	if c.RootDirectory != "" {
		return c.RootDirectory
	}

	return filepath.Join(os.TempDir(), "wayfinder")
}

func (c config) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

func (c config) GetAddrCacheTTL() time.Duration {
	if c.AddrCache.TTL.Duration == 0 {
		return DefaultAddrCacheTTL
	}

	return c.AddrCache.TTL.Duration
}

type configDatabase struct {
	Type              string   `json:"type"`
	Path              string   `json:"path"`
	Directory         string   `json:"directory"`
	LicenseKey        string   `json:"license_key"`
	UpdateEvery       duration `json:"update_every"`
	HTTPTimeout       duration `json:"http_timeout"`
	RateLimitInterval duration `json:"rate_limit_interval"`
	RateLimitBurst    uint     `json:"rate_limit_burst"`
}

func (c configDatabase) Configured() bool {
	return c.Type != ""
}

func (c configDatabase) GetDirectory(family string) string {
	if c.Directory != "" {
		return c.Directory
	}

	return family
}

func (c configDatabase) GetUpdateEvery() time.Duration {
	if c.UpdateEvery.Duration == 0 {
		return DefaultUpdateEvery
	}

	return c.UpdateEvery.Duration
}

func (c configDatabase) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c configDatabase) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configDatabase) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configDatabase) validate() error {
	switch c.Type {
	case "":
	case DatabaseTypeCSV:
		if c.Path == "" {
			return fmt.Errorf("csv database needs a path")
		}
	case DatabaseTypeMaxmindLite:
		if c.LicenseKey == "" {
			return fmt.Errorf("maxmind_lite database needs a license_key")
		}
	default:
		return fmt.Errorf("unknown database type %s", c.Type)
	}

	return nil
}

func parseConfig(path *os.File) (*config, error) {
	content, err := ioutil.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("cannot process json: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.Listen); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	conf.RootDirectory, err = filepath.Abs(conf.GetRootDirectory())
	if err != nil {
		return nil, fmt.Errorf("incorrect root directory: %w", err)
	}

	if err := conf.Databases.V4.validate(); err != nil {
		return nil, fmt.Errorf("incorrect v4 database: %w", err)
	}

	if err := conf.Databases.V6.validate(); err != nil {
		return nil, fmt.Errorf("incorrect v6 database: %w", err)
	}

	if !conf.Databases.V4.Configured() && !conf.Databases.V6.Configured() {
		return nil, fmt.Errorf("at least one database has to be configured")
	}

	return &conf, nil
}
