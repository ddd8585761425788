package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ait-tooling/ait/internal/providers"
	"github.com/ait-tooling/ait/internal/schema"
)

// ErrMissingCredential is returned when the selected backend needs an API key
// and neither the config file nor the environment provides one.
var ErrMissingCredential = errors.New("missing API key")

// Spec returns the preset of the configured provider.
func (c *Config) Spec() (*providers.ProviderSpec, error) {
	spec := providers.FindByName(c.Provider.Name)
	if spec == nil {
		return nil, fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	return spec, nil
}

// APIKey returns the configured key, falling back to the preset's env var.
func (c *Config) APIKey() string {
	if c.Provider.APIKey != "" {
		return c.Provider.APIKey
	}
	if spec := providers.FindByName(c.Provider.Name); spec != nil && spec.EnvKey != "" {
		return os.Getenv(spec.EnvKey)
	}
	return ""
}

// APIBase returns the configured base URL or the preset default.
func (c *Config) APIBase() string {
	if c.Provider.APIBase != "" {
		return c.Provider.APIBase
	}
	if spec := providers.FindByName(c.Provider.Name); spec != nil {
		return spec.DefaultAPIBase
	}
	return ""
}

// Model returns the configured model or the preset default.
func (c *Config) Model() string {
	if c.Agents.Defaults.Model != "" {
		return c.Agents.Defaults.Model
	}
	if spec := providers.FindByName(c.Provider.Name); spec != nil {
		return spec.DefaultModel
	}
	return ""
}

// ProviderParams resolves everything needed to construct the backend client.
// It fails when the configuration is invalid or a required key is missing.
func (c *Config) ProviderParams() (providers.Params, error) {
	if err := c.Validate(); err != nil {
		return providers.Params{}, err
	}
	spec, err := c.Spec()
	if err != nil {
		return providers.Params{}, err
	}
	key := c.APIKey()
	if key == "" && spec.RequiresKey() {
		return providers.Params{}, fmt.Errorf("%w for %s: set provider.apiKey in %s or export %s",
			ErrMissingCredential, spec.Label(), ConfigPath(), spec.EnvKey)
	}
	return providers.Params{
		APIKey:       key,
		APIBase:      c.APIBase(),
		ExtraHeaders: c.Provider.ExtraHeaders,
		DefaultModel: c.Model(),
		Temperature:  c.Agents.Defaults.Temperature,
		Compat:       spec.Compat,
		Timeout:      c.Provider.Timeout,
	}, nil
}

// AgentSettings converts the agent section for the orchestrator.
func (c *Config) AgentSettings() schema.AgentSettings {
	d := c.Agents.Defaults
	s := schema.NewAgentSettings(d.SystemPrompt, d.MaxTurns, d.ToolConcurrency, d.ToolTimeout)
	s.ToolChoice = d.ToolChoice
	return s
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every section against its constraints and reports the
// first offending key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	fe := verrs[0]
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint += "=" + fe.Param()
	}
	return fmt.Errorf("invalid config %s=%v: must satisfy %s", field, fe.Value(), constraint)
}
