package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"radrx/pkg/app/config"
	"radrx/pkg/blaster"
	"radrx/pkg/port"
	"radrx/pkg/raspberry"
	"radrx/pkg/receiver"
	"radrx/pkg/tx"

	"github.com/prometheus/client_golang/prometheus"
)

func emulatedApp(t *testing.T) *App {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Emulate = true
	if err := cfg.LoadConfig(); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err = a.init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func get(t *testing.T, a *App, path string) string {
	t.Helper()
	res, err := a.web.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != 200 {
		t.Fatalf("%s: status %d", path, res.StatusCode)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestEmulatedHit(t *testing.T) {
	a := emulatedApp(t)

	shot, err := NewShot("laserx", "blue", "")
	if err != nil {
		t.Fatal(err)
	}
	if err = tx.NewPlayer(a.emulator, a.emulator.Sleep).Blast(shot.Codec, shot.Payload); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, n, _ := a.hits.get(); n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no hit received")
		}
		time.Sleep(time.Millisecond)
	}
	// the final repetition is decoded after Blast returned
	time.Sleep(50 * time.Millisecond)

	var data struct {
		LastHit struct {
			Protocol string
			Damage   int
			Payload  map[string]string
		}
		Hits   uint64
		Damage uint64
		Stats  struct {
			Valid map[string]uint64
		}
	}
	if err = json.Unmarshal([]byte(get(t, a, "/data")), &data); err != nil {
		t.Fatal(err)
	}
	// every repetition of the waveform may be received as a hit of its own
	if data.Hits == 0 || data.Damage != data.Hits || data.LastHit.Protocol != "laserx" || data.LastHit.Payload["team"] != "blue" {
		t.Fatalf("unexpected data %+v", data)
	}
	if data.Stats.Valid["laserx"] != data.Hits {
		t.Fatalf("unexpected stats %+v", data.Stats)
	}

	metrics := get(t, a, "/metrics")
	for _, want := range []string{
		`radrx_receiver_valid_messages_total{protocol="rad"} 0`,
		`radrx_receiver_invalid_messages_total`,
		`radrx_protocols_enabled 3`,
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics without %s", want)
		}
	}
}

func TestVersionAndHealth(t *testing.T) {
	a := emulatedApp(t)

	if body := get(t, a, "/version"); !strings.Contains(body, `"description":"radrx"`) {
		t.Fatalf("unexpected version %s", body)
	}
	if body := get(t, a, "/health"); !strings.Contains(body, `"Protocols":["rad","dynasty","laserx"]`) {
		t.Fatalf("unexpected health %s", body)
	}
}

func TestNewShot(t *testing.T) {
	shot, err := NewShot("Dynasty", "green", "rocket")
	if err != nil {
		t.Fatal(err)
	}
	if shot.Codec.Protocol() != blaster.Dynasty || blaster.Damage(shot.Payload) != 3 {
		t.Fatalf("unexpected shot %+v", shot)
	}

	if _, err = NewShot("nec", "red", "pistol"); !errors.Is(err, blaster.ErrUnknownProtocol) {
		t.Fatalf("expected ErrUnknownProtocol, got %v", err)
	}
	if _, err = NewShot("dynasty", "red", "laser"); !errors.Is(err, blaster.ErrUnknownWeapon) {
		t.Fatalf("expected ErrUnknownWeapon, got %v", err)
	}
}

func TestShutdownOnClosedEventSource(t *testing.T) {
	a := emulatedApp(t)
	go a.watchReceiver()

	_ = a.emulator.Close()
	select {
	case <-a.Shutdown():
	case <-time.After(2 * time.Second):
		t.Fatalf("no shutdown after the event source was closed")
	}
}

func TestOverrunMetric(t *testing.T) {
	for _, tc := range []struct {
		line *raspberry.Line
		want bool
	}{
		{&raspberry.Line{}, true},
		{nil, false},
	} {
		a := &App{
			config:   config.NewConfig(),
			metrics:  prometheus.NewRegistry(),
			line:     tc.line,
			receiver: receiver.New(make(chan port.Event), receiver.Options{}),
		}
		a.initMetrics()

		mfs, err := a.metrics.Gather()
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, mf := range mfs {
			if mf.GetName() == "radrx_receiver_event_overruns_total" {
				found = true
			}
		}
		if found != tc.want {
			t.Fatalf("line %v: overrun metric registered %v", tc.line != nil, found)
		}
	}
}
