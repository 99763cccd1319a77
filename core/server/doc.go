// Package server wraps http.Server with graceful shutdown, environment
// configuration and optional TLS.
//
// # Basic Usage
//
// Build a server from Config and run it inside an errgroup. Canceling the
// group context triggers a graceful shutdown bounded by ShutdownTimeout:
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// # Configuration
//
// Config reads SERVER_ADDR, SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT,
// SERVER_IDLE_TIMEOUT, SERVER_SHUTDOWN_TIMEOUT and SERVER_MAX_HEADER_BYTES.
// Setting SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE switches the listener
// to HTTPS with DefaultTLSConfig.
//
// # Long-lived Connections
//
// http.Server.Shutdown does not wait for hijacked connections. Pass
// WithBaseContext so websocket handlers observe the shutdown through their
// request context.
package server
