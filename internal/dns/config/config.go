package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BINDMGR_"

// AppConfig holds the bindmgr configuration. Values come from the defaults,
// an optional YAML file and BINDMGR_* environment variables, in that order.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env       string          `koanf:"env" validate:"required,oneof=dev prod"`
	Log       LoggingConfig   `koanf:"log"`
	Named     NamedConfig     `koanf:"named"`
	Reload    ReloadConfig    `koanf:"reload"`
	API       APIConfig       `koanf:"api"`
	Blocklist BlocklistConfig `koanf:"blocklist"`
	Cache     CacheConfig     `koanf:"cache"`
}

type LoggingConfig struct {
	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// NamedConfig locates the BIND files bindmgr edits.
type NamedConfig struct {
	// Zones is the directory holding db.<zone> files.
	Zones string `koanf:"zones" validate:"required"`
	// Local holds the zone registrations.
	Local string `koanf:"local" validate:"required"`
	// Options holds the options block.
	Options string `koanf:"options" validate:"required"`
	// Conf is the main config holding conditional forwarders.
	Conf string `koanf:"conf" validate:"required"`
}

type ReloadConfig struct {
	// Rndc selects "rndc reload"; otherwise named gets SIGHUP.
	Rndc    bool          `koanf:"rndc"`
	Path    string        `koanf:"path" validate:"required_if=Rndc true"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Status  time.Duration `koanf:"status" validate:"gt=0"`
	// Probe is the ip:port queried for status and forwarder checks when rndc is not used.
	Probe string `koanf:"probe" validate:"omitempty,ip_port"`
}

type APIConfig struct {
	Listen string `koanf:"listen" validate:"required,listen_addr"`
	// Key, when set, must be sent in the X-API-Key header.
	Key string `koanf:"key"`
}

type BlocklistConfig struct {
	DB string `koanf:"db" validate:"required"`
	// Cache is the size of the decision cache; 0 disables it.
	Cache int `koanf:"cache" validate:"gte=0"`
}

// CacheConfig sizes the parsed zone record cache.
type CacheConfig struct {
	// Size is the number of zones kept; 0 disables the cache.
	Size int `koanf:"size" validate:"gte=0"`
	// Watch evicts cached zones when their files change on disk.
	Watch bool `koanf:"watch"`
}

// DEFAULT_APP_CONFIG matches a Debian style BIND layout.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LoggingConfig{Level: "info"},
	Named: NamedConfig{
		Zones:   "/etc/bind/zones",
		Local:   "/etc/bind/named.conf.local",
		Options: "/etc/bind/named.conf.options",
		Conf:    "/etc/bind/named.conf",
	},
	Reload: ReloadConfig{
		Rndc:    true,
		Path:    "/usr/sbin/rndc",
		Timeout: 30 * time.Second,
		Status:  5 * time.Second,
		Probe:   "127.0.0.1:53",
	},
	API: APIConfig{
		Listen: ":5000",
	},
	Blocklist: BlocklistConfig{
		DB:    "/var/lib/bindmgr/blocklist.db",
		Cache: 1000,
	},
	Cache: CacheConfig{
		Size:  256,
		Watch: true,
	},
}

// validIPPort validates whether the provided field value is a valid IP address and port combination.
// It expects the value to be in the format "IP:Port".
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// validListenAddr accepts host:port where the host may be empty, an IP or a name.
func validListenAddr(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	if strings.ContainsAny(host, " /") {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

// envLoader loads BINDMGR_* variables. The prefix is dropped and the rest is
// lowercased with "_" as the key separator, so BINDMGR_NAMED_ZONES sets named.zones.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			key = strings.ReplaceAll(key, "_", ".")
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// fileLoader merges a YAML config file over the defaults.
var fileLoader = func(k *koanf.Koanf, path string) error {
	return k.Load(file.Provider(path), yaml.Parser())
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "ip_port" and "listen_addr" tags.
var registerValidation = func(v *validator.Validate) error {
	if err := v.RegisterValidation("ip_port", validIPPort); err != nil {
		return err
	}
	return v.RegisterValidation("listen_addr", validListenAddr)
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. Environment variables override both.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if path != "" {
		if err := fileLoader(k, path); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
