package app

import (
	"strings"
	"testing"
	"time"

	"camo/profile"

	"github.com/stretchr/testify/require"
)

const tomlConfig = `
[log]
level = "debug"

[api]
listen = "127.0.0.1:8830"
token = "secret"

[engine]
default_profile = "compatibility"

[engine.rotation]
rotation_interval = "30s"
jitter_window = "5s"
session_based_rotation = true
preserve_session_affinity = true
entropy_refresh_rate = 2.5

[[profiles]]
id = "custom_low"
level = "low"
update_frequency = "2m"

[profiles.constraints]
min_cipher_suites = 4
max_cipher_suites = 8
`

const jsonConfig = `{
    "log": {"level": "info"},
    "api": {"listen": "127.0.0.1:8830"},
    "engine": {
        "default_profile": "balanced",
        "rotation": {"rotation_interval": "1m"}
    },
    "profiles": [
        {"id": "custom_json", "level": "extreme", "update_frequency": "90s"}
    ]
}`

func TestReadConfigTOML(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(tomlConfig))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "127.0.0.1:8830", cfg.API.Listen)
	require.Equal(t, "secret", cfg.API.Token)
	require.Equal(t, "compatibility", cfg.Engine.DefaultProfile)
	require.Len(t, cfg.Profiles, 1)
	require.Equal(t, "custom_low", cfg.Profiles[0].ID)
	require.Equal(t, 8, cfg.Profiles[0].Constraints.MaxCipherSuites)
}

func TestReadConfigJSON(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(jsonConfig))
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "balanced", cfg.Engine.DefaultProfile)
	require.Len(t, cfg.Profiles, 1)
	require.Equal(t, "custom_json", cfg.Profiles[0].ID)
}

func TestReadConfigGarbage(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("!!! not a config"))
	require.Error(t, err)
}

func TestFillDefault(t *testing.T) {
	cfg := (&Config{}).FillDefault()
	require.NotNil(t, cfg.Log)
	require.NotNil(t, cfg.Engine)
	require.NotNil(t, cfg.Engine.Rotation)
	require.True(t, cfg.Engine.Rotation.SessionBasedRotation)
	require.True(t, cfg.Engine.Rotation.PreserveSessionAffinity)
}

func TestProfileConfigToProfile(t *testing.T) {
	pc := &ProfileConfig{ID: "x", Level: "medium", UpdateFrequency: "3m"}
	p, err := pc.ToProfile()
	require.NoError(t, err)
	require.Equal(t, profile.LevelMedium, p.Level)
	require.Equal(t, 3*time.Minute, p.UpdateFrequency)

	pc.UpdateFrequency = "soon"
	_, err = pc.ToProfile()
	require.Error(t, err)
}

func TestRotationConfigToRotation(t *testing.T) {
	rc := &RotationConfig{
		RotationInterval:     "30s",
		JitterWindow:         "5s",
		SessionBasedRotation: true,
		EntropyRefreshRate:   2.5,
	}
	out, err := rc.ToRotation()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, out.RotationInterval)
	require.Equal(t, 5*time.Second, out.JitterWindow)
	require.Equal(t, 2.5, out.EntropyRefreshRate)

	rc.RotationInterval = "whenever"
	_, err = rc.ToRotation()
	require.Error(t, err)
}

func TestNewAppFromConfig(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(tomlConfig))
	require.NoError(t, err)

	instance, err := NewApp(cfg)
	require.NoError(t, err)
	defer instance.Close()

	require.Equal(t, "compatibility", instance.Engine.Profiles().Default().ID)
	_, ok := instance.Engine.Profiles().Get("custom_low")
	require.True(t, ok)
	rotation := instance.Engine.Profiles().Rotation()
	require.Equal(t, 30*time.Second, rotation.RotationInterval)
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	cfg := (&Config{API: &APIConfig{Listen: "no-port"}}).FillDefault()
	_, err := NewApp(cfg)
	require.Error(t, err)

	cfg = (&Config{
		Engine:   &EngineConfig{DefaultProfile: "missing"},
		Profiles: nil,
	}).FillDefault()
	_, err = NewApp(cfg)
	require.Error(t, err)

	cfg = (&Config{
		Profiles: []*ProfileConfig{{ID: "bad", Level: "turbo"}},
	}).FillDefault()
	_, err = NewApp(cfg)
	require.Error(t, err)
}
