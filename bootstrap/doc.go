// Package bootstrap runs the minutes binaries through a uniform lifecycle:
// validate config, start components, run hooks, then either block until a
// shutdown signal (Run) or execute a finite task (RunTask), and finally stop
// everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Register(bootstrap.NewComponent("http-server", srv.Start, srv.Stop))
//	app.OnReady(func(ctx context.Context) error { ... })
//	return app.Run(ctx)
package bootstrap
