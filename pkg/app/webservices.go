package app

import (
	"radrx/pkg/receiver"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

type resp struct {
	LastHit *Hit           // last received hit, null if no hit was received
	Hits    uint64         // number of hits
	Damage  uint64         // total damage of all hits
	Stats   receiver.Stats // receiver counters (valid messages per protocol, invalid, abandoned, dropped samples)
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData is the web handler of the received hits.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		last, hits, damage := app.hits.get()
		return ctx.JSON(resp{
			LastHit: last,
			Hits:    hits,
			Damage:  damage,
			Stats:   app.receiver.Stats(),
		})
	}
}
