package config

import (
	"bytes"
	"context"
	"testing"

	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(len(config.Servers), 2) // should have two servers
}

func TestLoadServer(t *testing.T) {
	is, config := setupConfigTest(t)

	s, err := config.Server("lab")
	is.NoErr(err)
	is.Equal(s.Endpoint, "https://cuc-lab.example.com")
	is.Equal(s.Username, "administrator")
	is.Equal(s.PasswordEnv, "CUPI_LAB_PASSWORD")
	is.Equal(s.Format, "xml")
	is.True(s.Debug)
	is.Equal(s.Timeout, 10)
}

func TestServerNameIsRequiredWithSeveralServers(t *testing.T) {
	is, config := setupConfigTest(t)

	_, err := config.Server("")
	is.True(err != nil)

	_, err = config.Server("staging")
	is.True(err != nil)
}

func TestSingleServerIsDefault(t *testing.T) {
	is := is.New(t)

	config, err := LoadConfiguration(bytes.NewBufferString("servers:\n  - name: only\n    endpoint: https://cuc.example.com\n"))
	is.NoErr(err)

	s, err := config.Server("")
	is.NoErr(err)
	is.Equal(s.Name, "only")
}

func TestInvalidServerIsRejected(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString("servers:\n  - name: broken\n    endpoint: https://cuc.example.com\n    format: soap\n"))
	is.True(err != nil) // unknown format should be rejected

	_, err = LoadConfiguration(bytes.NewBufferString("servers:\n  - endpoint: https://cuc.example.com\n"))
	is.True(err != nil) // a name is required
}

func TestClientOptionsReadPasswordFromEnvironment(t *testing.T) {
	is, config := setupConfigTest(t)
	t.Setenv("CUPI_LAB_PASSWORD", "s3cret")

	s, err := config.Server("lab")
	is.NoErr(err)

	options := s.ClientOptions(context.Background())
	is.Equal(len(options), 6) // credentials, debug, tls, xml, timeout and retries
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(configFile))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

const configFile string = `
servers:
  - name: production
    endpoint: https://cuc.example.com
    username: administrator
    passwordEnv: CUPI_PASSWORD
  - name: lab
    endpoint: https://cuc-lab.example.com
    username: administrator
    passwordEnv: CUPI_LAB_PASSWORD
    format: xml
    debug: true
    insecure: true
    timeout: 10
    retries: 3
`
