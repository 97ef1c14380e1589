package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"time"

	"camo/common"
	"camo/engine"
	"camo/fingerprint"
	"camo/profile"
	"camo/telemetry"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"camo/pkg"
)

var logger = pkg.NewLogger(zapcore.DebugLevel, os.Stdout)

func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

var Version = "0.1.0"

type App struct {
	config    *Config
	startTime time.Time
	Engine    *engine.Engine
	hub       *eventHub
	sweeper   *cron.Cron
	apiServer *http.Server
}

func NewApp(config *Config) (*App, error) {
	if config.API != nil {
		if _, _, err := net.SplitHostPort(config.API.Listen); err != nil {
			return nil, fmt.Errorf("invalid api listen: %v", err)
		}
	}
	store := profile.NewStore()
	rotation, err := config.Engine.Rotation.ToRotation()
	if err != nil {
		return nil, err
	}
	store.SetRotation(rotation)
	for i, pc := range config.Profiles {
		p, err := pc.ToProfile()
		if err != nil {
			return nil, fmt.Errorf("build the %dth profile error: %v", i+1, err)
		}
		if err := store.Register(p); err != nil {
			return nil, fmt.Errorf("build the %dth profile error: %v", i+1, err)
		}
	}
	if id := config.Engine.DefaultProfile; id != "" {
		if !store.SetDefault(id) {
			return nil, fmt.Errorf("default profile %q is not registered", id)
		}
	}
	app := &App{config: config}
	app.Engine, err = engine.New(store, telemetry.NewLogTracer(logger))
	if err != nil {
		return nil, err
	}
	app.hub = newEventHub()
	app.Engine.SetOnGenerate(func(sessionID, profileID string, fp *fingerprint.Fingerprint) {
		app.hub.Broadcast(&rotationEvent{
			Type:     "generated",
			Session:  sessionID,
			Profile:  profileID,
			JA3:      fp.JA3,
			JA4:      fp.JA4,
			Degraded: fp.Degraded,
			Time:     time.Now(),
		})
	})
	if config.API != nil {
		app.apiServer = buildAPIServer(app, config.API)
	}
	return app, nil
}

func (app *App) Start(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			app.Close()
		}
	}()
	rotation := app.Engine.Profiles().Rotation()
	if rotation.RotationInterval > 0 {
		app.sweeper = cron.New()
		_, err = app.sweeper.AddFunc("@every "+rotation.RotationInterval.String(), func() {
			sleepJitter(rotation.JitterWindow)
			removed := app.Engine.SweepExpired()
			if removed > 0 {
				logger.Debugf("Sweeper purged %d expired fingerprints", removed)
				app.hub.Broadcast(&rotationEvent{Type: "swept", Removed: removed, Time: time.Now()})
			}
		})
		if err != nil {
			return fmt.Errorf("schedule sweeper: %v", err)
		}
		app.sweeper.Start()
	}
	startFns := make([]func() error, 0, 1)
	if app.apiServer != nil {
		startFns = append(startFns, func() error {
			err := app.apiServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("API server error: %v", err)
			}
			return nil
		})
	}
	if len(startFns) > 0 {
		err = common.RunWithTimeout(time.Millisecond*200, startFns...)
		if err != nil {
			return err
		}
	}
	app.startTime = time.Now()
	return nil
}

func (app *App) Close() (err error) {
	if app.apiServer != nil {
		app.apiServer.Close()
	}
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.hub != nil {
		app.hub.Close()
	}
	if app.Engine != nil {
		app.Engine.Close()
	}
	return nil
}

func (app *App) StartTime() time.Time {
	return app.startTime
}

// sleepJitter delays up to window so sweeps do not align across
// instances.
func sleepJitter(window time.Duration) {
	if window <= 0 {
		return
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(window)))
	if err != nil {
		return
	}
	time.Sleep(time.Duration(n.Int64()))
}
