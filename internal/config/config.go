// Package config loads the grid trader's YAML configuration and builds the
// venue and quote feed it names.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-grid/internal/feed"
	"github.com/rxtech-lab/argo-grid/internal/gateway"
	"github.com/rxtech-lab/argo-grid/internal/grid"
	"github.com/rxtech-lab/argo-grid/internal/version"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"gopkg.in/yaml.v3"
)

// GatewayType names an execution venue.
type GatewayType string

// FeedType names a quote source.
type FeedType string

const (
	GatewayTypePaper          GatewayType = "paper"
	GatewayTypeBinanceFutures GatewayType = "binance-futures"
)

const (
	FeedTypeSynthetic      FeedType = "synthetic"
	FeedTypeBinanceFutures FeedType = "binance-futures"
)

// GatewayConfig selects and configures the execution venue.
type GatewayConfig struct {
	Type    GatewayType            `json:"type" yaml:"type" jsonschema:"title=Gateway Type,enum=paper,enum=binance-futures,default=paper" validate:"required,oneof=paper binance-futures"`
	Binance *gateway.BinanceConfig `json:"binance,omitempty" yaml:"binance,omitempty" jsonschema:"title=Binance,description=Required when type is binance-futures" validate:"-"`
}

// FeedConfig selects and configures the quote source.
type FeedConfig struct {
	Type FeedType `json:"type" yaml:"type" jsonschema:"title=Feed Type,enum=synthetic,enum=binance-futures,default=synthetic" validate:"required,oneof=synthetic binance-futures"`
	// Testnet streams quotes from the futures testnet.
	Testnet   bool                  `json:"testnet,omitempty" yaml:"testnet,omitempty" jsonschema:"title=Testnet,description=Stream testnet quotes"`
	Synthetic *feed.SyntheticConfig `json:"synthetic,omitempty" yaml:"synthetic,omitempty" jsonschema:"title=Synthetic,description=Random-walk generator settings" validate:"-"`
}

// Config is the top-level configuration file.
type Config struct {
	// Version is the binary version the file was written for.
	Version string        `json:"version" yaml:"version" jsonschema:"title=Version,description=Binary version the config targets,example=v1.0.0" validate:"required"`
	Symbol  string        `json:"symbol" yaml:"symbol" jsonschema:"title=Symbol,description=Instrument to trade,example=BTCUSDT" validate:"required"`
	Engine  grid.Config   `json:"engine" yaml:"engine" jsonschema:"title=Engine,description=Grid engine parameters" validate:"-"`
	Gateway GatewayConfig `json:"gateway" yaml:"gateway" jsonschema:"title=Gateway"`
	Feed    FeedConfig    `json:"feed" yaml:"feed" jsonschema:"title=Feed"`
}

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfigReadFailed, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse decodes a YAML document, applies defaults and validates it against
// the running binary's version.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	config = config.WithDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), config.Version); err != nil {
		return nil, err
	}

	return &config, nil
}

// WithDefaults returns a copy with defaults applied to every section.
func (c Config) WithDefaults() Config {
	c.Engine = c.Engine.WithDefaults()

	if c.Gateway.Type == "" {
		c.Gateway.Type = GatewayTypePaper
	}

	if c.Gateway.Binance != nil {
		binance := c.Gateway.Binance.WithDefaults()
		c.Gateway.Binance = &binance
	}

	if c.Feed.Type == "" {
		c.Feed.Type = FeedTypeSynthetic
	}

	if c.Feed.Type == FeedTypeSynthetic && c.Feed.Synthetic == nil {
		synthetic := feed.DefaultSyntheticConfig()
		c.Feed.Synthetic = &synthetic
	}

	return c
}

// Validate validates the Config struct and each section it selects.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return err
	}

	if c.Gateway.Type == GatewayTypeBinanceFutures {
		if c.Gateway.Binance == nil {
			return errors.New(errors.ErrCodeMissingParameter, "gateway.binance is required for the binance-futures gateway")
		}

		if err := c.Gateway.Binance.Validate(); err != nil {
			return err
		}
	}

	if c.Feed.Type == FeedTypeSynthetic {
		if c.Feed.Synthetic == nil {
			return errors.New(errors.ErrCodeMissingParameter, "feed.synthetic is required for the synthetic feed")
		}

		if err := c.Feed.Synthetic.Validate(); err != nil {
			return err
		}
	}

	return nil
}
