// Package config provides the relay's go-simpler.org/env configuration
// table (spec.md §6's enumerated runtime-configuration keys) plus the
// atomic, read-copy-update Policy snapshot spec.md §9 recommends for the
// auth/information values the session consults on every frame.
// Grounded on the teacher's app/config package.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"go-simpler.org/env"

	"beacon.dev/utils/chk"
)

// C is the process-level configuration, read once at startup from the
// environment.
type C struct {
	AppName  string `env:"BEACON_APP_NAME" default:"beacon"`
	Config   string `env:"BEACON_CONFIG_DIR" usage:"location for configuration file"`
	DataDir  string `env:"BEACON_DATA_DIR" usage:"storage location for the event store"`
	Listen   string `env:"BEACON_LISTEN" default:"0.0.0.0" usage:"network listen address"`
	Port     int    `env:"BEACON_PORT" default:"3334" usage:"port to listen on"`
	LogLevel string `env:"BEACON_LOG_LEVEL" default:"info" usage:"debug level: fatal error warn info debug trace"`
	Pprof    bool   `env:"BEACON_PPROF" default:"false" usage:"enable pprof on 127.0.0.1:6060"`

	AuthRequired      bool     `env:"BEACON_AUTH_REQUIRED" default:"false" usage:"require NIP-42 AUTH before EVENT/REQ"`
	AllowedPubkeys    []string `env:"BEACON_ALLOWED_PUBKEYS" usage:"hex pubkeys allowed to publish/subscribe; empty allows any authenticated pubkey"`
	InformationName   string   `env:"BEACON_INFO_NAME" usage:"advertised relay name"`
	InformationDesc   string   `env:"BEACON_INFO_DESCRIPTION" usage:"advertised relay description"`
	InformationPubkey string   `env:"BEACON_INFO_PUBKEY" usage:"operator pubkey"`
	InformationURI    string   `env:"BEACON_INFO_CONTACT" usage:"operator contact URI"`
}

// New loads C from the environment, defaulting Config/DataDir under the
// XDG base directories when unset.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.E(err) {
		return nil, err
	}
	if cfg.Config == "" {
		cfg.Config = filepath.Join(xdg.ConfigHome, cfg.AppName)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, cfg.AppName)
	}
	return cfg, nil
}

// HelpRequested reports whether the process was invoked asking for help.
func HelpRequested() bool {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			return true
		}
	}
	return false
}

// PrintHelp writes the usage text for C's environment variables.
func PrintHelp(cfg *C, w io.Writer) {
	fmt.Fprintf(w, "%s\n\nEnvironment variables:\n\n", cfg.AppName)
	env.Usage(cfg, w, &env.Options{SliceSep: ","})
}

// KV is a key/value pair, used to render the active configuration.
type KV struct{ Key, Value string }

// KVSlice is a sortable collection of KV pairs.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// PrintEnv renders cfg as sorted KEY=value lines.
func PrintEnv(cfg *C, w io.Writer) {
	kvs := KVSlice{
		{"BEACON_APP_NAME", cfg.AppName},
		{"BEACON_LISTEN", cfg.Listen},
		{"BEACON_PORT", fmt.Sprint(cfg.Port)},
		{"BEACON_LOG_LEVEL", cfg.LogLevel},
		{"BEACON_AUTH_REQUIRED", fmt.Sprint(cfg.AuthRequired)},
		{"BEACON_ALLOWED_PUBKEYS", strings.Join(cfg.AllowedPubkeys, ",")},
	}
	sort.Sort(kvs)
	for _, kv := range kvs {
		fmt.Fprintf(w, "%s=%s\n", kv.Key, kv.Value)
	}
}
