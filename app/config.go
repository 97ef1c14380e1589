package app

import (
	"bytes"
	"camo/common"
	"camo/profile"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level   string `json:"level" toml:"level"`
	Output  string `json:"output" toml:"output"`
	MaxSize string `json:"max_size" toml:"max_size"`
}

type APIConfig struct {
	Listen string `json:"listen" toml:"listen"`
	Token  string `json:"token" toml:"token"`
}

type RotationConfig struct {
	RotationInterval        string  `json:"rotation_interval,omitempty" toml:"rotation_interval"`
	SessionBasedRotation    bool    `json:"session_based_rotation" toml:"session_based_rotation"`
	IPBasedRotation         bool    `json:"ip_based_rotation" toml:"ip_based_rotation"`
	JitterWindow            string  `json:"jitter_window,omitempty" toml:"jitter_window"`
	PreserveSessionAffinity bool    `json:"preserve_session_affinity" toml:"preserve_session_affinity"`
	EntropyRefreshRate      float64 `json:"entropy_refresh_rate,omitempty" toml:"entropy_refresh_rate"`
}

type EngineConfig struct {
	DefaultProfile string          `json:"default_profile,omitempty" toml:"default_profile"`
	Rotation       *RotationConfig `json:"rotation,omitempty" toml:"rotation"`
}

type ProfileConfig struct {
	ID                    string              `json:"id" toml:"id"`
	Name                  string              `json:"name,omitempty" toml:"name"`
	Level                 string              `json:"level" toml:"level"`
	MaintainCompatibility bool                `json:"maintain_compatibility" toml:"maintain_compatibility"`
	TargetApplications    []string            `json:"target_applications,omitempty" toml:"target_applications"`
	UpdateFrequency       string              `json:"update_frequency,omitempty" toml:"update_frequency"`
	Constraints           profile.Constraints `json:"constraints,omitempty" toml:"constraints"`
	SuccessRate           float64             `json:"success_rate,omitempty" toml:"success_rate"`
	DetectionResistance   float64             `json:"detection_resistance,omitempty" toml:"detection_resistance"`
}

func (c *ProfileConfig) ToProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		ID:                    c.ID,
		Name:                  c.Name,
		Level:                 profile.Level(c.Level),
		MaintainCompatibility: c.MaintainCompatibility,
		TargetApplications:    c.TargetApplications,
		Constraints:           c.Constraints,
		SuccessRate:           c.SuccessRate,
		DetectionResistance:   c.DetectionResistance,
	}
	if c.UpdateFrequency != "" {
		d, err := time.ParseDuration(c.UpdateFrequency)
		if err != nil {
			return nil, fmt.Errorf("parse update_frequency: %v", err)
		}
		p.UpdateFrequency = d
	}
	return p, nil
}

type Config struct {
	Log      *LogConfig       `json:"log" toml:"log"`
	API      *APIConfig       `json:"api,omitempty" toml:"api"`
	Engine   *EngineConfig    `json:"engine" toml:"engine"`
	Profiles []*ProfileConfig `json:"profiles,omitempty" toml:"profiles"`
}

func (cfg *Config) FillDefault() *Config {
	if cfg.Log == nil {
		cfg.Log = &LogConfig{}
	}
	if cfg.Engine == nil {
		cfg.Engine = &EngineConfig{}
	}
	if cfg.Engine.Rotation == nil {
		cfg.Engine.Rotation = &RotationConfig{
			SessionBasedRotation:    true,
			PreserveSessionAffinity: true,
		}
	}
	for i := range cfg.Profiles {
		if cfg.Profiles[i] == nil {
			cfg.Profiles[i] = &ProfileConfig{}
		}
	}
	return cfg
}

func (c *RotationConfig) ToRotation() (profile.RotationConfig, error) {
	out := profile.DefaultRotationConfig()
	if c.RotationInterval != "" {
		d, err := time.ParseDuration(c.RotationInterval)
		if err != nil {
			return out, fmt.Errorf("parse rotation_interval: %v", err)
		}
		out.RotationInterval = d
	}
	if c.JitterWindow != "" {
		d, err := time.ParseDuration(c.JitterWindow)
		if err != nil {
			return out, fmt.Errorf("parse jitter_window: %v", err)
		}
		out.JitterWindow = d
	}
	out.SessionBasedRotation = c.SessionBasedRotation
	out.IPBasedRotation = c.IPBasedRotation
	out.PreserveSessionAffinity = c.PreserveSessionAffinity
	if c.EntropyRefreshRate > 0 {
		out.EntropyRefreshRate = c.EntropyRefreshRate
	}
	return out, nil
}

func ReadConfig(r io.Reader) (*Config, error) {
	var buf bytes.Buffer
	r = io.TeeReader(r, &buf)
	var cfg Config
	err := toml.NewDecoder(r).Decode(&cfg)
	if err == nil {
		return cfg.FillDefault(), nil
	}
	err2 := json.NewDecoder(io.MultiReader(&buf, r)).Decode(&cfg)
	if err2 == nil {
		return cfg.FillDefault(), nil
	}
	return nil, fmt.Errorf("failed to read config as toml: %v ; failed to read config as json: %v", err, err2)
}

func ReadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadConfig(f)
}

func ReadConfigURL(url string) (*Config, error) {
	client := &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
	defer client.CloseIdleConnections()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", common.DefaultUserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP server returned with non-OK code %d", resp.StatusCode)
	}
	return ReadConfig(resp.Body)
}
