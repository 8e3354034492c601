// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package services adapts long-running server components to suture v4.

Each wrapper implements suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer so suture's event hook can name it in logs.

# Available Services

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine
and context cancellation triggers a bounded graceful Shutdown.

SessionJanitorService ticks at the configured sweep interval and asks the
discovery session registry to close sessions that have been idle longer
than their TTL.

# Usage

	tree.AddEngineService(services.NewSessionJanitorService(registry, cfg.Sessions.SweepInterval, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

Returning ctx.Err() on cancellation tells suture the stop was requested;
any other error counts toward the restart failure threshold.
*/
package services
