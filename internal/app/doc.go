// Package app wires the OptimEdu HTTP service together: configuration,
// logging, OpenTelemetry, the analysis services and the chi router.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, a YAML file and OPTIMEDU_* variables
//	2. Initialize logging and observability
//	3. Build the shared workspace and the services over it
//	4. Build the advisor when a language model key is configured
//	5. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. In-flight
// requests get Server.ShutdownTimeout to finish before the OpenTelemetry
// providers are flushed.
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit.
package app
