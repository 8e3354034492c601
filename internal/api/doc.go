// Tastemap - Restaurant Discovery and Reviews
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastemap

/*
Package api is the HTTP shell around the discovery engine.

Each client view (a search screen, a map panel) opens a discovery session and
then drives it with filter, search and scroll events. The session owns all
ranking state; handlers only translate HTTP into session calls and the
session's View back into JSON.

# Routes

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	POST   /api/v1/sessions                    open a session, fetch page 1
	GET    /api/v1/sessions/{id}/results       ranked list + loading/has_more/notice
	PATCH  /api/v1/sessions/{id}/filters       partial filter update (debounced)
	POST   /api/v1/sessions/{id}/search        set search term (debounced)
	PUT    /api/v1/sessions/{id}/palates       replace the user's palate preferences
	POST   /api/v1/sessions/{id}/refresh       reload page 1 (recovers a failed fetch)
	POST   /api/v1/sessions/{id}/more          load next page
	POST   /api/v1/sessions/{id}/visible       scroll trigger {index, rendered}
	GET    /api/v1/sessions/{id}/suggestions   suggestion section
	DELETE /api/v1/sessions/{id}               close session
	GET    /metrics                            Prometheus

Debounced endpoints answer 202 Accepted. Pass ?flush=true to commit the
pending update immediately and receive the resulting view, which is useful
for scripted clients and tests.

# Responses

Every JSON body uses models.APIResponse:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
	{"status":"error","data":null,"error":{"code":"NOT_FOUND","message":"..."}}

A failed listing fetch is not an HTTP error: the view is returned with the
last good results and a notice, mirroring how a client would show a banner
over stale results.

# Middleware

Global: RequestID (logging context), chi RealIP, chi Recoverer, CORS
(go-chi/cors), chi Compress. The /api/v1 tree adds httprate limiting,
security headers and Prometheus instrumentation.
*/
package api
