package inspector

import (
	"context"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
)

// LogsInput is the input of GetLogs.
type LogsInput struct {
	RequestID string `json:"requestId" jsonschema:"description=Clockwork request ID"`
	Level     string `json:"level,omitempty" jsonschema:"description=Minimum log level,enum=debug,enum=info,enum=warning,enum=error"`
}

// GetLogs returns the log entries of a request at or above the given level.
func (i *Inspector) GetLogs(ctx context.Context, in LogsInput) ([]clockwork.LogEntry, error) {
	r, err := i.find(ctx, in.RequestID)
	if err != nil || r == nil || r.Log == nil {
		return []clockwork.LogEntry{}, err
	}
	if in.Level == "" {
		return r.Log, nil
	}

	minRank := clockwork.LevelRank(in.Level)
	out := make([]clockwork.LogEntry, 0, len(r.Log))
	for _, l := range r.Log {
		if clockwork.LevelRank(l.Level) >= minRank {
			out = append(out, l)
		}
	}
	return out, nil
}

// GetEvents returns the events dispatched during a request.
func (i *Inspector) GetEvents(ctx context.Context, id string) ([]clockwork.DispatchedEvent, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || r.Events == nil {
		return []clockwork.DispatchedEvent{}, err
	}
	return r.Events, nil
}

// GetViews returns the views rendered during a request.
func (i *Inspector) GetViews(ctx context.Context, id string) ([]clockwork.RenderedView, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil {
		return []clockwork.RenderedView{}, err
	}
	if views := r.Views(); views != nil {
		return views, nil
	}
	return []clockwork.RenderedView{}, nil
}

// GetHTTPRequests returns the outgoing HTTP calls made during a request.
func (i *Inspector) GetHTTPRequests(ctx context.Context, id string) ([]clockwork.OutgoingHTTPRequest, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || r.HTTPRequests == nil {
		return []clockwork.OutgoingHTTPRequest{}, err
	}
	return r.HTTPRequests, nil
}

// GetAuthUser returns the authenticated user of a request, or nil.
func (i *Inspector) GetAuthUser(ctx context.Context, id string) (clockwork.Object, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || len(r.AuthenticatedUser) == 0 {
		return nil, err
	}
	return r.AuthenticatedUser, nil
}

// SessionInput is the input of GetSessionData.
type SessionInput struct {
	RequestID string   `json:"requestId" jsonschema:"description=Clockwork request ID"`
	Keys      []string `json:"keys,omitempty" jsonschema:"description=Specific session keys to retrieve"`
}

// GetSessionData returns the session data of a request, restricted to Keys when given.
func (i *Inspector) GetSessionData(ctx context.Context, in SessionInput) (clockwork.Object, error) {
	r, err := i.find(ctx, in.RequestID)
	if err != nil || r == nil || r.SessionData == nil {
		return clockwork.Object{}, err
	}
	if len(in.Keys) == 0 {
		return r.SessionData, nil
	}
	out := make(clockwork.Object, len(in.Keys))
	for _, k := range in.Keys {
		if v, ok := r.SessionData[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// GetMiddlewareChain returns the middleware applied to a request.
func (i *Inspector) GetMiddlewareChain(ctx context.Context, id string) ([]string, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil || r.Middleware == nil {
		return []string{}, err
	}
	return r.Middleware, nil
}

// RouteDetails describes how a request was routed. Unknown values are null.
type RouteDetails struct {
	Route      *string `json:"route"`
	RouteName  *string `json:"routeName"`
	URI        *string `json:"uri"`
	Method     *string `json:"method"`
	Controller *string `json:"controller"`
}

// GetRouteDetails returns the route, URI, method and controller of a request.
func (i *Inspector) GetRouteDetails(ctx context.Context, id string) (RouteDetails, error) {
	r, err := i.find(ctx, id)
	if err != nil || r == nil {
		return RouteDetails{}, err
	}
	return RouteDetails{
		Route:      r.Route,
		RouteName:  r.RouteName,
		URI:        nonEmpty(r.URI),
		Method:     nonEmpty(r.Method),
		Controller: nonEmpty(r.Controller),
	}, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
