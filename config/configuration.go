package config

import (
	"errors"
	"time"
)

// ServerConfiguration contains the http server settings
type ServerConfiguration struct {
	Port    int
	Address string
}

// SMTPConfiguration contains the email settings, if Enabled is false
// no mail will ever be sent and invite links are share-it-yourself only
type SMTPConfiguration struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string `json:"-"`
	// DisplayName will be displayed as email sender
	DisplayName string `mapstructure:"display-name"`
	// Address is the sender address
	Address string
}

// DatabaseConfiguration contains the settings required to connect to a database
type DatabaseConfiguration struct {
	Type string
	DSN  string `json:"-"`
}

// BehaviourConfiguration configures how the service will behave
type BehaviourConfiguration struct {
	Name string
	// Site is the SPA origin, used to mint accept-invite links
	Site string
	// InviteExpiry is how long an issued invitation stays acceptable
	InviteExpiry time.Duration `mapstructure:"invite-expiry"`
	// DefaultJoinRole is the role assigned on join-by-code
	DefaultJoinRole string `mapstructure:"default-join-role"`
}

// JWTConfiguration holds the settings to verify upstream-issued bearer tokens
type JWTConfiguration struct {
	Algorithm          string `mapstructure:"alg"`
	HMACSigningKey     string `mapstructure:"hmac-signing-key"      json:"-"`
	HMACSigningKeyFile string `mapstructure:"hmac-signing-key-file"`
}

// CORSConfiguration very basic cors configuration
type CORSConfiguration struct {
	AllowCredentials bool     `mapstructure:"allow-credentials"`
	AllowedMethods   []string `mapstructure:"allowed-methods"`
	AllowedOrigins   []string `mapstructure:"allowed-origins"`
}

// ManageEndpointConfiguration holds the manage endpoint configuration
type ManageEndpointConfiguration struct {
	Enable bool
	CORS   *CORSConfiguration
}

// Configuration holds the entire hearth configuration
type Configuration struct {
	Server         *ServerConfiguration         `mapstructure:"server"`
	SMTP           *SMTPConfiguration           `mapstructure:"smtp"`
	Database       *DatabaseConfiguration       `mapstructure:"database"`
	Behaviour      *BehaviourConfiguration      `mapstructure:"behaviour"`
	JWT            *JWTConfiguration            `mapstructure:"jwt"`
	ManageEndpoint *ManageEndpointConfiguration `mapstructure:"manage-endpoint"`
}

// Validate does some basic validation of the config file and tries to be helpful on missconfiguration
func (c *Configuration) Validate() error {
	if c.Database == nil {
		return errors.New("no database configuration found")
	}
	if c.Behaviour == nil {
		return errors.New("no behaviour configuration found")
	}
	if c.Behaviour.Site == "" {
		return errors.New("behaviour.site is required to mint accept-invite links")
	}
	if c.JWT == nil {
		return errors.New("no JWT configuration found")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
		if c.JWT.HMACSigningKey == "" && c.JWT.HMACSigningKeyFile == "" {
			return errors.New(
				"when using jwt.alg HS256, HS384, HS512 you need to define either hmac-signing-key or hmac-signing-key-file",
			)
		}
	default:
		return errors.New("unsupported jwt.alg, use one of HS256, HS384, HS512")
	}
	if c.Server == nil {
		return errors.New("no server configuration found")
	}
	if c.SMTP != nil && c.SMTP.Enabled {
		if c.SMTP.Host == "" || c.SMTP.Address == "" {
			return errors.New("smtp is enabled but host or sender address is missing")
		}
	}
	if c.ManageEndpoint != nil {
		if c.ManageEndpoint.Enable && c.ManageEndpoint.CORS == nil {
			return errors.New("manage endpoint has no cors settings")
		}
	}
	return nil
}
