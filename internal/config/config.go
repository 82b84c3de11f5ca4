package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ghaggin/pastemate/internal/route"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSignInPath = "/account/signin"
)

var (
	errConfigIsDir = errors.New("config file is dir")
)

// Path is the location of the yaml config file. An empty Path means
// defaults only.
type Path string

type Config struct {
	Server   Server             `yaml:"server"`
	Session  Session            `yaml:"session"`
	Guard    Guard              `yaml:"guard"`
	JSONRepo JSONRepo           `yaml:"json_repo"`
	Routes   []route.Descriptor `yaml:"routes"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Session struct {
	// Lifetime bounds the cookie session, AuthLifetime bounds a sign-in
	// inside it.
	Lifetime     time.Duration `yaml:"lifetime"`
	AuthLifetime time.Duration `yaml:"auth_lifetime"`
	CookieName   string        `yaml:"cookie_name"`
	Secure       bool          `yaml:"secure"`
}

type Guard struct {
	SignInPath    string `yaml:"signin_path"`
	DenyByDefault bool   `yaml:"deny_by_default"`
}

type JSONRepo struct {
	Path string `yaml:"path"`
}

func New(path Path) (*Config, error) {
	c := defaults()
	if path == "" {
		return c, nil
	}

	filename, err := filepath.Abs(string(path))
	if err != nil {
		return nil, err
	}

	finfo, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if finfo.IsDir() {
		return nil, errConfigIsDir
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	if err := Parse(yamlFile, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	return c, nil
}

// Parse decodes yaml data over c, keeping the values already in c for any
// key the document leaves out.
func Parse(data []byte, c *Config) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	if c.Guard.SignInPath == "" {
		c.Guard.SignInPath = DefaultSignInPath
	}
	if c.Session.AuthLifetime > c.Session.Lifetime {
		c.Session.AuthLifetime = c.Session.Lifetime
	}
	if len(c.Routes) == 0 {
		c.Routes = route.DefaultDescriptors()
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: Server{
			Host: "localhost",
			Port: 8123,
		},
		Session: Session{
			Lifetime:     24 * time.Hour,
			AuthLifetime: 12 * time.Hour,
			CookieName:   "pastemate_session",
		},
		Guard: Guard{
			SignInPath: DefaultSignInPath,
		},
		JSONRepo: JSONRepo{
			Path: "data/users.json",
		},
		Routes: route.DefaultDescriptors(),
	}
}
