// Package config loads the suite settings from a yaml file and the environment.
package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/integrail/suggest-e2e/pkg/browser/local"
	"github.com/integrail/suggest-e2e/pkg/browser/remote"
	"github.com/integrail/suggest-e2e/pkg/wiki"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"

	DefaultPath    = ".suggest-e2e/config.yaml"
	DefaultBaasURL = "https://baas.integrail.ai"
)

type Config struct {
	Backend       string         `yaml:"backend"`
	BaseURL       string         `yaml:"baseURL"`
	WaitTimeout   time.Duration  `yaml:"waitTimeout"`
	ScreenshotDir string         `yaml:"screenshotDir"`
	Local         local.Config   `yaml:"local"`
	Remote        remote.Config  `yaml:"remote"`
	Selectors     wiki.Selectors `yaml:"selectors"`
}

func Defaults() Config {
	return Config{
		Backend:       BackendLocal,
		BaseURL:       wiki.DefaultURL,
		WaitTimeout:   wiki.DefaultWaitTimeout,
		ScreenshotDir: "output",
		Local:         local.Config{Headless: true},
		Remote: remote.Config{
			URL:            DefaultBaasURL,
			APIKey:         "test",
			Timeout:        "10m",
			MessageTimeout: "30s",
		},
		Selectors: wiki.DefaultSelectors(),
	}
}

// Load reads path over the defaults and applies the environment. An empty path
// falls back to DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	path = lo.If(explicit, path).Else(DefaultPath)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "failed to parse %s", path)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return cfg, errors.Wrapf(err, "failed to read %s", path)
	}
	cfg.Selectors = cfg.Selectors.WithDefaults()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for env, field := range map[string]*string{
		"WIKI_BASE_URL": &c.BaseURL,
		"E2E_BACKEND":   &c.Backend,
		"BAAS_URL":      &c.Remote.URL,
		"BAAS_API_KEY":  &c.Remote.APIKey,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*field = v
		}
	}
	if v, ok := lookup("E2E_HEADLESS"); ok && v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid E2E_HEADLESS %q", v)
		}
		c.Local.Headless = headless
		c.Remote.Headful = !headless
	}
	return nil
}

// OverrideSelectors replaces selectors by their yaml names.
func (c *Config) OverrideSelectors(overrides map[string]string) error {
	data, err := yaml.Marshal(c.Selectors)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal selectors")
	}
	byName := map[string]string{}
	if err := yaml.Unmarshal(data, &byName); err != nil {
		return errors.Wrapf(err, "failed to unmarshal selectors")
	}
	for name, selector := range overrides {
		if _, ok := byName[name]; !ok {
			return errors.Errorf("unknown selector %q, expected one of %v", name, lo.Keys(byName))
		}
		byName[name] = selector
	}
	if data, err = yaml.Marshal(byName); err != nil {
		return errors.Wrapf(err, "failed to marshal selectors")
	}
	return errors.Wrapf(yaml.Unmarshal(data, &c.Selectors), "failed to apply selectors")
}

func (c *Config) Validate() error {
	if c.Backend != BackendLocal && c.Backend != BackendRemote {
		return errors.Errorf("unknown backend %q, expected %s or %s", c.Backend, BackendLocal, BackendRemote)
	}
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("invalid base URL %q", c.BaseURL)
	}
	if c.WaitTimeout <= 0 {
		return errors.Errorf("wait timeout must be positive, got %s", c.WaitTimeout)
	}
	if c.Backend == BackendRemote {
		if c.Remote.URL == "" {
			return errors.New("BaaS URL is required for the remote backend")
		}
		for name, d := range map[string]string{"timeout": c.Remote.Timeout, "message timeout": c.Remote.MessageTimeout} {
			if d == "" {
				continue
			}
			if _, err := time.ParseDuration(d); err != nil {
				return errors.Wrapf(err, "invalid remote %s %q", name, d)
			}
		}
	}
	return nil
}
