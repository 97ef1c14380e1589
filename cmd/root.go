package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"os/signal"

	"camo/app"
	"camo/cache"
	"camo/pkg"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "camo",
	Short:   "TLS client-fingerprint randomization engine",
	Version: app.Version,
	Run: func(cmd *cobra.Command, args []string) {
		b64Str, _ := cmd.Flags().GetString("base64")
		configFile, _ := cmd.Flags().GetString("config")
		var (
			cfg *app.Config
			err error
		)
		if b64Str != "" {
			var data []byte
			data, err = base64.StdEncoding.DecodeString(b64Str)
			if err == nil {
				cfg, err = app.ReadConfig(bytes.NewReader(data))
			}
		} else {
			if pkg.IsURL(configFile) {
				cfg, err = app.ReadConfigURL(configFile)
			} else {
				if configFile == "" {
					configFile = getDefaultConfigFile()
				}
				if configFile == "" {
					logger.Fatalln("No specified config file")
				}
				cfg, err = app.ReadConfigFile(configFile)
			}
		}
		if err != nil {
			logger.Fatalln(err)
		}
		logger2, close, err := buildLogger(cfg.Log)
		if err != nil {
			logger.Fatalln(err)
		}
		defer logger2.Sync()
		if close != nil {
			defer close()
		}
		app.SetLogger(logger2)
		cache.SetLogger(logger2)
		instance, err := app.NewApp(cfg)
		if err != nil {
			logger2.Fatalln(err)
		}
		if err := instance.Start(context.Background()); err != nil {
			logger2.Fatalln(err)
		}
		logger2.Warnf("Current version %s", app.Version)
		if cfg.API != nil {
			logger2.Warnf("API server listening on %s", cfg.API.Listen)
		}
		logger2.Warnf("Profiles available: %v", instance.Engine.Profiles().IDs())
		rotation := instance.Engine.Profiles().Rotation()
		if rotation.RotationInterval > 0 {
			logger2.Infof("Sweeper running every %s with jitter window %s",
				rotation.RotationInterval, rotation.JitterWindow)
		}
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		logger2.Warnln("Exit signal received, closing...")
		instance.Close()
		logger2.Warnln("Exit finished")
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringP("base64", "b", "", "use base64 encoded string as config")
	rootCmd.Flags().StringP("config", "c", "", "config file or remote url")
	rootCmd.MarkFlagsMutuallyExclusive("base64", "config")
	cobra.MousetrapHelpText = ""
}
