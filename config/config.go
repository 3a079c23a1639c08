package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr      string
	DBUrl     string
	PublicURL string
	StaticDir string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool

	AllowedOrigins []string
	AdminPassword  string

	Debug   bool
	LogJSON bool
}

var defaultOrigins = []string{
	"http://127.0.0.1:5500",
	"http://localhost:5500",
	"http://localhost:4200",
	"http://localhost:3000",
}

func ParseFlags() (cfg Config, err error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse reads cfg from args; flags not given fall back to the environment.
func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("PORT", 3000), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", envOr("DB_URL", "survey.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.PublicURL, "public-url", envOr("PUBLIC_URL", ""), "base URL of public survey links (default derived from listen address)")
	fs.StringVar(&cfg.StaticDir, "static-dir", envOr("STATIC_DIR", ""), "directory of frontend files served at / (disabled when empty)")
	fs.StringVar(&cfg.AccessSecret, "access-secret", os.Getenv("JWT_SECRET"), "secret key for access tokens")
	fs.StringVar(&cfg.RefreshSecret, "refresh-secret", os.Getenv("JWT_REFRESH_SECRET"), "secret key for refresh tokens")
	fs.DurationVar(&cfg.AccessTTL, "access-ttl", 15*time.Minute, "access token TTL")
	fs.DurationVar(&cfg.RefreshTTL, "refresh-ttl", 7*24*time.Hour, "refresh token TTL")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", os.Getenv("NODE_ENV") == "production", "mark auth cookies Secure")
	var origins string
	fs.StringVar(&origins, "allowed-origins", envOr("ALLOWED_ORIGINS", strings.Join(defaultOrigins, ",")), "comma separated CORS origins")
	fs.StringVar(&cfg.AdminPassword, "admin-password", envOr("ADMIN_PASSWORD", "admin123!"), "password of the initial superadmin account")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "log as JSON lines")
	err = fs.Parse(args)
	if err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.Url()
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	switch {
	case cfg.AccessSecret == "":
		err = errors.New("missing parameter -access-secret")
	case cfg.RefreshSecret == "":
		err = errors.New("missing parameter -refresh-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

// SurveyLink is the public address respondents open to fill in a survey.
func (cfg Config) SurveyLink(id string) string {
	return cfg.PublicURL + "/f/" + id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint) uint {
	n, err := strconv.ParseUint(os.Getenv(key), 10, 32)
	if err != nil {
		return fallback
	}
	return uint(n)
}
