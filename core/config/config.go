// Package config loads and validates the shell's YAML configuration.
package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/95jonpet/pjsh/core/state"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the file name looked up inside a configuration
// directory.
const ConfigurationName = "config.yaml"

type Configuration struct {
	// Prompt is expanded like a double quoted word before every
	// interactive read.
	Prompt string `json:"prompt"`
	// ContinuationPrompt shows when an interactive line is incomplete.
	ContinuationPrompt string `json:"continuation_prompt"`

	// Env holds variables set and exported in the outermost scope.
	Env map[string]string `json:"env"`

	// Aliases holds aliases seeded into the outermost scope.
	Aliases map[string]string `json:"aliases"`

	SSH SSH `json:"ssh"`
}

// SSH configures the optional SSH frontend.
type SSH struct {
	Port int `json:"port" validate:"gte=0,lte=65535"`
	// HostKey is the path of the PEM encoded host key, relative to the
	// configuration directory. A missing key is generated on demand.
	HostKey string `json:"host_key" validate:"required"`
	Banner  string `json:"banner"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Apply seeds the configuration's variables and aliases into the given
// context. Variables from Env are exported.
func (c *Configuration) Apply(ctx *state.Context) error {
	for name, value := range c.Env {
		ctx.SetVar(name, state.Word(value))
		if err := ctx.Export(name); err != nil {
			return err
		}
	}
	for name, value := range c.Aliases {
		ctx.SetAlias(name, value)
	}
	return nil
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built in configuration.
func Default() *Configuration {
	return defaultConfig()
}
