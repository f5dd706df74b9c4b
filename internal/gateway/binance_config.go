package gateway

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

const (
	// DefaultPricePrecision is used when the config leaves price_precision unset.
	DefaultPricePrecision = 2
	// DefaultQuantityPrecision is used when the config leaves quantity_precision unset.
	DefaultQuantityPrecision = 3
)

// BinanceConfig contains configuration for the Binance USDⓈ-M futures gateway.
type BinanceConfig struct {
	ApiKey    string `json:"api_key" yaml:"api_key" jsonschema:"title=API Key,description=Binance API key" validate:"required"`
	SecretKey string `json:"secret_key" yaml:"secret_key" jsonschema:"title=Secret Key,description=Binance API secret key" validate:"required"`
	Testnet   bool   `json:"testnet" yaml:"testnet" jsonschema:"title=Testnet,description=Route requests to the futures testnet"`
	// BaseURL overrides the REST endpoint when set; it takes precedence over Testnet.
	BaseURL           string `json:"base_url,omitempty" yaml:"base_url,omitempty" jsonschema:"title=Base URL,description=Custom REST endpoint" validate:"omitempty,url"`
	PricePrecision    int    `json:"price_precision" yaml:"price_precision" jsonschema:"title=Price Precision,description=Decimals used when formatting prices,minimum=0,maximum=8" validate:"gte=0,lte=8"`
	QuantityPrecision int    `json:"quantity_precision" yaml:"quantity_precision" jsonschema:"title=Quantity Precision,description=Decimals used when formatting quantities,minimum=0,maximum=8" validate:"gte=0,lte=8"`
}

// WithDefaults fills unset precisions.
func (c BinanceConfig) WithDefaults() BinanceConfig {
	if c.PricePrecision == 0 {
		c.PricePrecision = DefaultPricePrecision
	}

	if c.QuantityPrecision == 0 {
		c.QuantityPrecision = DefaultQuantityPrecision
	}

	return c
}

// Validate validates the BinanceConfig struct.
func (c *BinanceConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance gateway config", err)
	}

	return nil
}
