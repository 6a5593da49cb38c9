package builder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrMalformedConfig is returned when a layout misses required keys or holds
// invalid power bounds.
var ErrMalformedConfig = errors.New("malformed infrastructure config")

// Config is the declarative layout of an infrastructure tree.
type Config struct {
	Transformers []TransformerConfig `json:"transformers" yaml:"transformers" validate:"required,len=1,dive"`
}

// TransformerConfig describes the root node and its charging points.
type TransformerConfig struct {
	ID             string                `json:"id,omitempty" yaml:"id,omitempty"`
	MinPower       *float64              `json:"min_power" yaml:"min_power" validate:"required"`
	MaxPower       *float64              `json:"max_power" yaml:"max_power" validate:"required"`
	ChargingPoints []ChargingPointConfig `json:"charging_points" yaml:"charging_points" validate:"required,dive"`
}

// ChargingPointConfig describes a charging point and its connection points.
type ChargingPointConfig struct {
	ID               string                  `json:"id,omitempty" yaml:"id,omitempty"`
	MinPower         *float64                `json:"min_power" yaml:"min_power" validate:"required"`
	MaxPower         *float64                `json:"max_power" yaml:"max_power" validate:"required"`
	ConnectionPoints []ConnectionPointConfig `json:"connection_points" yaml:"connection_points" validate:"required,dive"`
}

// ConnectionPointConfig describes a leaf.
type ConnectionPointConfig struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	MinPower *float64 `json:"min_power" yaml:"min_power" validate:"required"`
	MaxPower *float64 `json:"max_power" yaml:"max_power" validate:"required"`
}

// Power returns a pointer to v, for building configs in code.
func Power(v float64) *float64 { return &v }

// NumConnectionPoints counts the leaves described by the layout.
func (c Config) NumConnectionPoints() int {
	n := 0
	for _, t := range c.Transformers {
		for _, cp := range t.ChargingPoints {
			n += len(cp.ConnectionPoints)
		}
	}
	return n
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every required key is present.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrMalformedConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	return nil
}

// LoadConfig reads a layout from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeConfig reads a layout from r in the given format ("yaml" or "json").
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
