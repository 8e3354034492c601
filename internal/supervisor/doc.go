// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package supervisor runs the server's long-lived services under suture v4.

# Overview

	RootSupervisor ("tastemap")
	├── EngineSupervisor ("engine-layer")
	│   └── SessionJanitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The layers restart independently. A janitor panic never drops the listener,
and a listener failure never stops idle-session expiry.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(services.NewSessionJanitorService(registry, interval, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events (restarts, backoff, timeouts) are logged through the
sutureslog hook, which writes to the slog.Logger passed to
NewSupervisorTree. The server passes logging.NewSlogLogger so those events
land in the same zerolog stream as everything else.

# Configuration

TreeConfig zero values take suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Contract

  - Return ctx.Err() once ctx is canceled
  - Return any other error to be restarted
  - Return nil to stop without restart

If a service ignores cancellation, UnstoppedServiceReport names it after
the tree has stopped.
*/
package supervisor
