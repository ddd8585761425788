package gateway

// GatewayConfig holds HTTP server settings for `ait serve`.
type GatewayConfig struct {
	Host         string   `yaml:"host" validate:"required"`
	Port         int      `yaml:"port" validate:"gte=1,lte=65535"`
	AllowOrigins []string `yaml:"allowOrigins,omitempty"`
}

func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Host:         "127.0.0.1",
		Port:         18790,
		AllowOrigins: []string{"http://localhost:4200"},
	}
}
