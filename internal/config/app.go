package config

import "errors"

var ErrNeedsPostgres = errors.New("command needs STORE_DRIVER=postgres")

// AppConfig is the environment a server-side command runs with.
type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

// LoadApp reads the logging and server settings. A non-empty httpAddr
// replaces HTTP_ADDR.
func LoadApp(httpAddr string) (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	if httpAddr != "" {
		serverCfg.HTTPAddr = httpAddr
	}
	return AppConfig{Server: serverCfg, Log: logCfg}, nil
}

// AdminEnabled reports whether the admin routes can be reached at all.
func (c AppConfig) AdminEnabled() bool {
	return c.Server.AdminAPIKey != ""
}

func (c AppConfig) RequirePostgres() error {
	if c.Server.StoreDriver != DriverPostgres {
		return ErrNeedsPostgres
	}
	return nil
}
