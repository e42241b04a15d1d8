package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"radrx/pkg/app"
	"radrx/pkg/app/config"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	// shot holds the blast command flags, empty flags are taken from the tx section of the configuration
	var shot struct {
		protocol, team, weapon string
		gpio                   int
	}

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "IR receiver of light-tag blasters",
		Version: app.VERSION,
		Description: "Decode the infrared messages of rad, dynasty and laser x blasters received on a gpio" +
			"\n and publish the hits to mqtt and the web services /data and /metrics." +
			"\n The blast command transmits a shot on the IR emitter of the tx gpio.",
		UsageText: "radrx [--config <file>] [--log standard|debug|trace] [blast [--protocol <name>] [--team <team>] [--weapon <weapon>]]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the receiver and use the configuration file radrx.yaml" +
			"\n\t\tradrx --config /opt/womat/radrx.yaml" +
			"\n\ttransmit a red dynasty rocket" +
			"\n\t\tradrx blast --protocol dynasty --team red --weapon rocket",
		Flags: globalFlags(cfg),
		Commands: []*cli.Command{
			{
				Name:  "blast",
				Usage: "transmit a shot",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "protocol", Aliases: []string{"p"}, Destination: &shot.protocol, Usage: "`PROTOCOL` of the shot (rad|dynasty|laserx)"},
					&cli.StringFlag{Name: "team", Aliases: []string{"t"}, Destination: &shot.team, Usage: "`TEAM` of the shooter"},
					&cli.StringFlag{Name: "weapon", Aliases: []string{"w"}, Destination: &shot.weapon, Usage: "`WEAPON` of the shooter"},
					&cli.IntFlag{Name: "gpio", Aliases: []string{"g"}, Destination: &shot.gpio, Value: -1, Usage: "BCM number of the IR emitter `GPIO`"},
				},
				Action: func(ctx *cli.Context) error {
					if err := cfg.LoadConfig(); err != nil {
						return err
					}

					debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
					defer func() { _ = cfg.Log.File.Close() }()

					if shot.protocol != "" {
						cfg.Tx.Protocol = shot.protocol
					}
					if shot.team != "" {
						cfg.Tx.Team = shot.team
					}
					if shot.weapon != "" {
						cfg.Tx.Weapon = shot.weapon
					}
					if shot.gpio >= 0 {
						cfg.Tx.Gpio = shot.gpio
					}

					s, err := app.NewShot(cfg.Tx.Protocol, cfg.Tx.Team, cfg.Tx.Weapon)
					if err != nil {
						return err
					}
					return app.Blast(cfg, s)
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Log.FileString)
				_ = cfg.Log.File.Close()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C)
			select {
			case sig := <-quit:
				debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
			case <-a.Shutdown():
				debug.InfoLog.Print("shutdown requested")
			}

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
	return
}

// globalFlags returns the flags of the receiver, an empty log level keeps log.flag of the configuration file.
func globalFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
		&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Usage: "`LEVEL` defines the log level (standard|debug|trace), overrides log.flag of the configuration file"},
	}
}
