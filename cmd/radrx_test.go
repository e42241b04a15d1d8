package main

import (
	"testing"

	"radrx/pkg/app/config"

	"github.com/urfave/cli/v2"
)

func TestLogFlag(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"radrx"}, ""},
		{[]string{"radrx", "--log", "trace"}, "trace"},
	} {
		cfg := config.NewConfig()
		a := &cli.App{Flags: globalFlags(cfg), Action: func(*cli.Context) error { return nil }}
		if err := a.Run(tc.args); err != nil {
			t.Fatal(err)
		}
		if cfg.Flag.LogLevel != tc.want {
			t.Fatalf("%v: got log level %q, want %q", tc.args, cfg.Flag.LogLevel, tc.want)
		}
		if cfg.Flag.ConfigFile != defaultConfigFile {
			t.Fatalf("%v: unexpected config file %q", tc.args, cfg.Flag.ConfigFile)
		}
	}
}
