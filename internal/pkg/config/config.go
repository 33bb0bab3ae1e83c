package config

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	yaml "gopkg.in/yaml.v2"
)

type Server struct {
	Name        string `yaml:"name"`
	Endpoint    string `yaml:"endpoint"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"passwordEnv"`
	Format      string `yaml:"format"`
	Debug       bool   `yaml:"debug"`
	Insecure    bool   `yaml:"insecure"`
	Timeout     int    `yaml:"timeout"`
	Retries     uint64 `yaml:"retries"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Endpoint, validation.Required, is.URL),
		validation.Field(&s.Format, validation.In("json", "xml")),
		validation.Field(&s.Timeout, validation.Min(0)),
	)
}

// ClientOptions turns the server settings into client options. The password
// is read from the environment variable named by PasswordEnv.
func (s Server) ClientOptions(ctx context.Context) []func(*client.Client) {
	password := ""
	if s.PasswordEnv != "" {
		password = env.GetVariableOrDefault(ctx, s.PasswordEnv, "")
	}

	options := []func(*client.Client){
		client.Credentials(s.Username, password),
		client.Debug(fmt.Sprintf("%t", s.Debug)),
		client.InsecureSkipVerify(s.Insecure),
	}

	if strings.EqualFold(s.Format, "xml") {
		options = append(options, client.XML())
	}

	if s.Timeout > 0 {
		options = append(options, client.Timeout(time.Duration(s.Timeout)*time.Second))
	}

	if s.Retries > 0 {
		options = append(options, client.Retries(s.Retries))
	}

	return options
}

type Config struct {
	Servers []Server `yaml:"servers"`
}

// Server returns the named server. An empty name selects the only configured
// server, if there is exactly one.
func (c *Config) Server(name string) (*Server, error) {
	if name == "" {
		if len(c.Servers) == 1 {
			return &c.Servers[0], nil
		}
		return nil, fmt.Errorf("a server name is required when %d servers are configured", len(c.Servers))
	}

	for idx := range c.Servers {
		if c.Servers[idx].Name == name {
			return &c.Servers[idx], nil
		}
	}

	return nil, fmt.Errorf("no server named %q is configured", name)
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	for idx, s := range cfg.Servers {
		err = s.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid server at index %d: %w", idx, err)
		}
	}

	return cfg, nil
}
