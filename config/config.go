package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string
	DBDriver        string
	DBUrl           string
	TokenSecret     string
	TokenTTL        time.Duration
	AdminUser       string
	AdminPassword   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ReportTTL       time.Duration
	DuplicateWindow time.Duration
	PublicDir       string
	PrivateDir      string
	Debug           bool
	LogFormat       string
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse reads the command line. Keys of the YAML file named by -config are
// flag names; flags given on the command line win over the file.
func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	fs.UintVar(&port, "port", 80, "listen port number")
	var file string
	fs.StringVar(&file, "config", "", "path to a YAML config file")
	fs.StringVar(&cfg.DBDriver, "db-driver", DriverSQLite, "database driver: sqlite3 or pgx")
	fs.StringVar(&cfg.DBUrl, "db-url", "surveys.sqlite", "SQLite3 file path or Postgres connection URL")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", 120, "token TTL in seconds")
	fs.StringVar(&cfg.AdminUser, "admin-user", "admin", "administrator user name")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "administrator password, created or reset at startup when set")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "redis address for the report cache, disabled when empty")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database number")
	fs.DurationVar(&cfg.ReportTTL, "report-ttl", 10*time.Minute, "how long computed reports stay cached")
	fs.DurationVar(&cfg.DuplicateWindow, "duplicate-window", time.Minute, "identical submissions from one IP within this window are ignored")
	fs.StringVar(&cfg.PublicDir, "public-dir", "public", "directory of the public UI bundle")
	fs.StringVar(&cfg.PrivateDir, "private-dir", "private", "directory of the admin UI bundle")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "log output format: text or json")

	if err = fs.Parse(args); err != nil {
		return
	}
	if file != "" {
		if err = loadFile(fs, file); err != nil {
			return
		}
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres:
		err = fmt.Errorf("unsupported -db-driver %q", cfg.DBDriver)
	}
	return
}

func loadFile(fs *flag.FlagSet, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	for name, value := range values {
		if name == "config" || explicit[name] {
			continue
		}
		if fs.Lookup(name) == nil {
			return fmt.Errorf("config %s: unknown key %q", path, name)
		}
		if err := fs.Set(name, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}
	return nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
