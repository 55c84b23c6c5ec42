package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/observatorycheck/internal/domain"
	"github.com/hamed0406/observatorycheck/internal/observatory"
)

const defaultTimeoutSeconds = 5

// ChecksFile mirrors an agent check configuration file:
//
//	init_config:
//	  default_timeout: 5
//	instances:
//	  - host: example.com
//	    timeout: 10
//	    tags: [env:prod]
//	    hidden: true
type ChecksFile struct {
	InitConfig InitConfig       `yaml:"init_config"`
	Instances  []InstanceConfig `yaml:"instances" validate:"dive"`
}

type InitConfig struct {
	DefaultTimeout *float64 `yaml:"default_timeout" validate:"omitempty,gt=0"`
}

// InstanceConfig is one entry under instances. Host is not required here:
// an instance without a host is skipped (and logged) when it runs.
type InstanceConfig struct {
	Host    string   `yaml:"host"`
	Timeout *float64 `yaml:"timeout" validate:"omitempty,gt=0"`
	Tags    []string `yaml:"tags"`
	Hidden  bool     `yaml:"hidden"`
	APIURL  string   `yaml:"api_url" validate:"omitempty,url"`
}

var validate = validator.New()

// LoadChecks reads and validates a checks file.
func LoadChecks(path string) (*ChecksFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checks file: %w", err)
	}
	return ParseChecks(data)
}

func ParseChecks(data []byte) (*ChecksFile, error) {
	f := &ChecksFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse checks file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("checks validation failed: %w", err)
	}
	return f, nil
}

func (f *ChecksFile) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", e.Namespace(), e.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ResolveInstances resolves defaults for every configured instance.
func (f *ChecksFile) ResolveInstances() []domain.Instance {
	def := float64(defaultTimeoutSeconds)
	if f.InitConfig.DefaultTimeout != nil {
		def = *f.InitConfig.DefaultTimeout
	}

	out := make([]domain.Instance, 0, len(f.Instances))
	for _, ic := range f.Instances {
		timeout := def
		if ic.Timeout != nil {
			timeout = *ic.Timeout
		}
		apiURL := ic.APIURL
		if apiURL == "" {
			apiURL = observatory.DefaultAPIURL
		}
		out = append(out, domain.Instance{
			Host:    ic.Host,
			Timeout: time.Duration(timeout * float64(time.Second)),
			Tags:    append([]string(nil), ic.Tags...),
			Hidden:  ic.Hidden,
			APIURL:  apiURL,
		})
	}
	return out
}
