package mcp

import (
	"errors"
)

func (s *Server) registerContextTools() error {
	insp := s.inspector
	return errors.Join(
		register(s, "get_logs",
			"Get log entries for a request, optionally at or above a minimum level.",
			result(insp.GetLogs)),
		register(s, "get_events",
			"Get dispatched events for a request.",
			byID(insp.GetEvents)),
		register(s, "get_views",
			"Get rendered views for a request.",
			byID(insp.GetViews)),
		register(s, "get_http_requests",
			"Get outgoing HTTP requests made during a request.",
			byID(insp.GetHTTPRequests)),
		register(s, "get_auth_user",
			"Get the authenticated user of a request, or null.",
			byID(insp.GetAuthUser)),
		register(s, "get_session_data",
			"Get session data of a request, optionally only the given keys.",
			result(insp.GetSessionData)),
		register(s, "get_middleware_chain",
			"Get the middleware applied to a request.",
			byID(insp.GetMiddlewareChain)),
		register(s, "get_route_details",
			"Get the route, route name, URI, method and controller of a request.",
			byID(insp.GetRouteDetails)),
	)
}
