package profile

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrInvalidProfile = errors.New("invalid profile")
)

// Level controls how aggressively ClientHello parameters are varied.
type Level string

const (
	LevelLow     Level = "low"
	LevelMedium  Level = "medium"
	LevelHigh    Level = "high"
	LevelExtreme Level = "extreme"
)

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelExtreme:
		return true
	}
	return false
}

const (
	DefaultMinCipherSuites = 4
	DefaultMaxCipherSuites = 12
	DefaultMaxExtensions   = 16
	DefaultUpdateFrequency = 5 * time.Minute
)

// Constraints bounds what the generator may produce. Zero fields fall back
// to the package defaults. Extra carries unrecognized keys from config
// files so round-tripping them does not lose data.
type Constraints struct {
	MinCipherSuites int     `json:"min_cipher_suites,omitempty" toml:"min_cipher_suites"`
	MaxCipherSuites int     `json:"max_cipher_suites,omitempty" toml:"max_cipher_suites"`
	MaxExtensions   int     `json:"max_extensions,omitempty" toml:"max_extensions"`
	MimicAccuracy   float64 `json:"mimic_accuracy,omitempty" toml:"mimic_accuracy"`
	BrowserTemplate bool    `json:"browser_template,omitempty" toml:"browser_template"`
	// ForceVersion pins the TLS version, e.g. "TLS1.2". Empty means the
	// level decides.
	ForceVersion string         `json:"force_version,omitempty" toml:"force_version"`
	Extra        map[string]any `json:"extra,omitempty" toml:"extra"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c Constraints) WithDefaults() Constraints {
	if c.MinCipherSuites <= 0 {
		c.MinCipherSuites = DefaultMinCipherSuites
	}
	if c.MaxCipherSuites <= 0 {
		c.MaxCipherSuites = DefaultMaxCipherSuites
	}
	if c.MaxExtensions <= 0 {
		c.MaxExtensions = DefaultMaxExtensions
	}
	return c
}

// Merge overlays non-zero fields of o on top of c. Used for per-call
// constraint overrides.
func (c Constraints) Merge(o *Constraints) Constraints {
	if o == nil {
		return c
	}
	if o.MinCipherSuites > 0 {
		c.MinCipherSuites = o.MinCipherSuites
	}
	if o.MaxCipherSuites > 0 {
		c.MaxCipherSuites = o.MaxCipherSuites
	}
	if o.MaxExtensions > 0 {
		c.MaxExtensions = o.MaxExtensions
	}
	if o.MimicAccuracy > 0 {
		c.MimicAccuracy = o.MimicAccuracy
	}
	if o.BrowserTemplate {
		c.BrowserTemplate = true
	}
	if o.ForceVersion != "" {
		c.ForceVersion = o.ForceVersion
	}
	return c
}

func (c Constraints) validate() error {
	if c.MinCipherSuites < 0 || c.MaxCipherSuites < 0 || c.MaxExtensions < 0 {
		return fmt.Errorf("%w: negative constraint", ErrInvalidProfile)
	}
	if c.MinCipherSuites > 0 && c.MaxCipherSuites > 0 && c.MinCipherSuites > c.MaxCipherSuites {
		return fmt.Errorf("%w: min_cipher_suites %d > max_cipher_suites %d",
			ErrInvalidProfile, c.MinCipherSuites, c.MaxCipherSuites)
	}
	if c.MimicAccuracy < 0 || c.MimicAccuracy > 1 {
		return fmt.Errorf("%w: mimic_accuracy must be within [0,1]", ErrInvalidProfile)
	}
	return nil
}

// Profile is a named randomization policy. SuccessRate and
// DetectionResistance are descriptive metadata carried through from
// config, never computed.
type Profile struct {
	ID                    string
	Name                  string
	Level                 Level
	MaintainCompatibility bool
	TargetApplications    []string
	// UpdateFrequency is the cache TTL for fingerprints generated under
	// this profile.
	UpdateFrequency     time.Duration
	Constraints         Constraints
	SuccessRate         float64
	DetectionResistance float64
}

func (p *Profile) validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProfile)
	}
	if !p.Level.Valid() {
		return fmt.Errorf("%w: level %q", ErrInvalidProfile, p.Level)
	}
	if p.UpdateFrequency < 0 {
		return fmt.Errorf("%w: negative update_frequency", ErrInvalidProfile)
	}
	return p.Constraints.validate()
}

// RotationConfig drives app-level housekeeping: how often the sweeper
// runs and how eagerly the entropy pool refreshes.
type RotationConfig struct {
	RotationInterval        time.Duration
	SessionBasedRotation    bool
	IPBasedRotation         bool
	JitterWindow            time.Duration
	PreserveSessionAffinity bool
	// EntropyRefreshRate is refreshes per second granted to the pool.
	EntropyRefreshRate float64
}

func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		RotationInterval:        time.Minute,
		SessionBasedRotation:    true,
		JitterWindow:            10 * time.Second,
		PreserveSessionAffinity: true,
		EntropyRefreshRate:      1,
	}
}
