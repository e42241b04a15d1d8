package app

import (
	"net/url"

	"radrx/pkg/app/config"
	"radrx/pkg/mqtt"
	"radrx/pkg/port"
	"radrx/pkg/raspberry"
	"radrx/pkg/receiver"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/womat/debug"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// chip and line are the handlers to the gpio of the IR receiver
	chip *raspberry.Chip
	line *raspberry.Line

	// emulator replaces chip and line in emulation mode
	emulator *raspberry.Emulator

	// receiver decodes the pulse trains of the IR receiver
	receiver *receiver.Receiver

	// metrics is the prometheus registry of the /metrics web service
	metrics *prometheus.Registry

	// hits holds the received hits
	hits hitLog

	// shutdown signals application shutdown
	shutdown chan struct{}
	// quit stops the emulated blaster
	quit chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:    mqtt.New(),
		metrics: prometheus.NewRegistry(),

		shutdown: make(chan struct{}),
		quit:     make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.watchReceiver()

	if app.emulator != nil && app.config.Tx.Interval > 0 {
		go app.runEmulatedBlaster()
	}

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	var events <-chan port.Event

	if app.config.Emulate {
		debug.InfoLog.Print("emulation mode, no gpio is used")
		app.emulator = raspberry.NewEmulator(0)
		events = app.emulator.C
	} else {
		if app.chip, err = raspberry.Open(app.config.Chip); err != nil {
			debug.ErrorLog.Printf("can't open gpio: %v", err)
			return err
		}

		if app.line, err = app.chip.NewLine(app.config.Gpio, app.config.Terminator); err != nil {
			debug.ErrorLog.Printf("can't open line: %v", err)
			return err
		}
		events = app.line.C
	}

	app.receiver = receiver.New(events, receiver.Options{
		Codecs:      app.config.Codecs,
		CounterBits: app.config.CounterBits,
	})
	app.receiver.SetCallback(app.handleHit)
	if err = app.receiver.Init(); err != nil {
		debug.ErrorLog.Printf("can't start receiver: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	app.initMetrics()

	// initDefaultRoutes should be always called last because it may access things like app.receiver
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/radrx.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// watchReceiver requests the application shutdown when the receiver loses its event source.
func (app *App) watchReceiver() {
	select {
	case <-app.receiver.SourceClosed():
		debug.ErrorLog.Print("receiver event source closed, shutting down")
		close(app.shutdown)
	case <-app.quit:
	}
}

// Close stops the receiver and releases the hardware.
func (app *App) Close() error {
	if app.quit != nil {
		close(app.quit)
	}

	if app.receiver != nil {
		_ = app.receiver.Close()
	}
	if app.line != nil {
		_ = app.line.Close()
	}
	if app.chip != nil {
		_ = app.chip.Close()
	}
	if app.emulator != nil {
		_ = app.emulator.Close()
	}

	if app.mqtt != nil {
		// the receiver is closed, no more hits are published
		close(app.mqtt.C)
		_ = app.mqtt.Disconnect()
	}
	if app.web != nil {
		_ = app.web.Shutdown()
	}
	return nil
}
