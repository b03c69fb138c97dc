package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the plain-struct replacement for the metaclass-driven
// configuration object the original implementation built around an
// ad-hoc attribute-mapping type. Everything a kernel needs to start is
// here; there is no dynamic attribute magic, just fields and a couple
// of projection helpers.
type Config struct {
	KernelName          string `json:"kernel_name"`
	SignatureScheme     string `json:"signature_scheme"`
	Transport           string `json:"transport"`
	IP                  string `json:"ip"`
	StdinPort           int    `json:"stdin_port"`
	ControlPort         int    `json:"control_port"`
	IOPubPort           int    `json:"iopub_port"`
	HBPort              int    `json:"hb_port"`
	ShellPort           int    `json:"shell_port"`
	Key                 string `json:"key"`
	CardiacArrestTimeoutS int  `json:"cardiac_arrest_timeout_s"`
	LiveReload          bool   `json:"live_reload"`
	AdminAddr           string `json:"admin_addr"`
}

// DefaultCardiacArrestTimeoutS matches the original implementation's
// 15-minute liveness window.
const DefaultCardiacArrestTimeoutS = 15 * 60

// LoadConfigFile reads a connection file as delivered by a Jupyter
// front-end or the admin surface.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading connection file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing connection file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfigEnv overlays IGNITION_KERNEL_<KEY> environment variables
// onto a base config, mirroring the connection-file JSON keys.
func LoadConfigEnv(base Config) Config {
	cfg := base
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "IGNITION_KERNEL_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], "IGNITION_KERNEL_"))
		val := parts[1]
		switch key {
		case "kernel_name":
			cfg.KernelName = val
		case "signature_scheme":
			cfg.SignatureScheme = val
		case "transport":
			cfg.Transport = val
		case "ip":
			cfg.IP = val
		case "key":
			cfg.Key = val
		case "admin_addr":
			cfg.AdminAddr = val
		case "live_reload":
			cfg.LiveReload = val == "1" || val == "true"
		case "cardiac_arrest_timeout_s":
			if n, err := strconv.Atoi(val); err == nil {
				cfg.CardiacArrestTimeoutS = n
			}
		}
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Transport == "" {
		c.Transport = "tcp"
	}
	if c.IP == "" {
		c.IP = "127.0.0.1"
	}
	if c.SignatureScheme == "" {
		c.SignatureScheme = "hmac-sha256"
	}
	if c.CardiacArrestTimeoutS <= 0 {
		c.CardiacArrestTimeoutS = DefaultCardiacArrestTimeoutS
	}
}

// SameOptions reports whether two configs describe the same live
// kernel for the purposes of the admin surface's option-drift warning
// (same transport/ports/key; the kernel_name and admin_addr fields are
// not part of wire identity).
func (c Config) SameOptions(other Config) bool {
	return c.Transport == other.Transport &&
		c.IP == other.IP &&
		c.StdinPort == other.StdinPort &&
		c.ControlPort == other.ControlPort &&
		c.IOPubPort == other.IOPubPort &&
		c.HBPort == other.HBPort &&
		c.ShellPort == other.ShellPort &&
		c.Key == other.Key
}
