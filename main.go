package main

import (
	"embed"
	"os"

	"github.com/chazu/snapjoin/pkg/config"
	"github.com/chazu/snapjoin/pkg/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

// configPath returns $SNAPJOIN_CONFIG, or snapjoin.yaml in the working
// directory.
func configPath() string {
	if p := os.Getenv("SNAPJOIN_CONFIG"); p != "" {
		return p
	}
	return "snapjoin.yaml"
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		logging.New(logging.Config{}).Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging())
	app := NewApp(cfg, logger)

	err = wails.Run(&options.App{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("wails", "error", err)
		os.Exit(1)
	}
}
