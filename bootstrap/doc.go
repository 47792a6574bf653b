// Package bootstrap runs the tashkeel binaries: it loads the typed config,
// starts registered components in order, prints a startup summary and
// stops everything on shutdown.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(engineComponent)
//	app.RegisterComponent(serverComponent)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// RunTask is the same lifecycle for one-shot CLI commands.
package bootstrap
