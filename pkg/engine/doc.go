// Package engine serves the canaryd route table over HTTP.
//
// Every request, whatever its method, is looked up by exact path in the
// route table:
//
//	              ┌──────────────┐
//	request ────▶ │   Handler    │ ──── miss ───▶ 404 "404 Not Found"
//	              └──────┬───────┘
//	                     │ match
//	         ┌───────────┼──────────────┐
//	         ▼           ▼              ▼
//	    WARN log    notifier (async)   canned body + status
//
// A match is logged at warn level and forwarded to the notifier on a
// tracked goroutine with its own timeout. The notification never delays or
// alters the response. Misses are neither logged nor notified.
//
// # Basic Usage
//
//	cfg, _ := config.Load("config.yaml")
//	table := routes.FromConfig(cfg.Routes)
//
//	srv := engine.NewServer(cfg, table,
//	    engine.WithLogger(log),
//	    engine.WithNotifier(tg),
//	)
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop(context.Background())
package engine
