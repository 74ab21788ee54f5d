// Package clockwork defines the telemetry records captured by the Clockwork
// PHP profiler, as stored on disk or in a database by its storage backends.
//
// Optional scalars are pointers so that an absent value can be told apart
// from zero; analyses depend on that distinction (a request without a
// recorded duration is excluded, not counted as 0 ms).
package clockwork

// RequestType is the kind of execution a Request describes.
type RequestType string

const (
	TypeRequest  RequestType = "request"
	TypeCommand  RequestType = "command"
	TypeQueueJob RequestType = "queue-job"
	TypeTest     RequestType = "test"
)

// Request is one captured execution: an HTTP request, console command,
// queue job or test run.
type Request struct {
	ID      string      `json:"id"`
	Version float64     `json:"version,omitempty"`
	Type    RequestType `json:"type,omitempty"`
	// Time is the start time in unix seconds.
	Time float64 `json:"time"`

	Method      string   `json:"method,omitempty"`
	URI         string   `json:"uri,omitempty"`
	URL         string   `json:"url,omitempty"`
	Controller  string   `json:"controller,omitempty"`
	Headers     Object   `json:"headers,omitempty"`
	GetData     Object   `json:"getData,omitempty"`
	PostData    Object   `json:"postData,omitempty"`
	RequestData Object   `json:"requestData,omitempty"`
	Middleware  []string `json:"middleware,omitempty"`

	// ResponseDuration is in milliseconds.
	ResponseStatus   *int     `json:"responseStatus,omitempty"`
	ResponseDuration *float64 `json:"responseDuration,omitempty"`
	// MemoryUsage is peak memory in bytes.
	MemoryUsage *float64 `json:"memoryUsage,omitempty"`

	Route     *string `json:"route,omitempty"`
	RouteName *string `json:"routeName,omitempty"`

	CommandName              string `json:"commandName,omitempty"`
	CommandArguments         Object `json:"commandArguments,omitempty"`
	CommandArgumentsDefaults Object `json:"commandArgumentsDefaults,omitempty"`
	CommandOptions           Object `json:"commandOptions,omitempty"`
	CommandOptionsDefaults   Object `json:"commandOptionsDefaults,omitempty"`
	CommandExitCode          *int   `json:"commandExitCode,omitempty"`
	CommandOutput            string `json:"commandOutput,omitempty"`

	DatabaseQueries      []DatabaseQuery `json:"databaseQueries,omitempty"`
	DatabaseQueriesCount *int            `json:"databaseQueriesCount,omitempty"`
	DatabaseSlowQueries  *int            `json:"databaseSlowQueries,omitempty"`
	DatabaseSelects      *int            `json:"databaseSelects,omitempty"`
	DatabaseInserts      *int            `json:"databaseInserts,omitempty"`
	DatabaseUpdates      *int            `json:"databaseUpdates,omitempty"`
	DatabaseDeletes      *int            `json:"databaseDeletes,omitempty"`
	DatabaseOthers       *int            `json:"databaseOthers,omitempty"`
	DatabaseDuration     *float64        `json:"databaseDuration,omitempty"`

	CacheQueries  []CacheQuery `json:"cacheQueries,omitempty"`
	CacheReads    *int         `json:"cacheReads,omitempty"`
	CacheHits     *int         `json:"cacheHits,omitempty"`
	CacheWrites   *int         `json:"cacheWrites,omitempty"`
	CacheDeletes  *int         `json:"cacheDeletes,omitempty"`
	CacheDuration *float64     `json:"cacheDuration,omitempty"`

	RedisCommands []RedisCommand `json:"redisCommands,omitempty"`

	Log []LogEntry `json:"log,omitempty"`

	Events []DispatchedEvent `json:"events,omitempty"`

	ViewsList []RenderedView `json:"views,omitempty"`
	ViewsData []RenderedView `json:"viewsData,omitempty"`

	TimelineData Timeline `json:"timelineData,omitempty"`

	HTTPRequests []OutgoingHTTPRequest `json:"httpRequests,omitempty"`

	AuthenticatedUser Object `json:"authenticatedUser,omitempty"`
	SessionData       Object `json:"sessionData,omitempty"`
}

// DatabaseQuery is one executed SQL statement. Duration is in milliseconds.
type DatabaseQuery struct {
	Query      string   `json:"query"`
	// Bindings is a positional array or, for named parameters, an object.
	Bindings   any      `json:"bindings,omitempty"`
	Duration   float64  `json:"duration"`
	Connection string   `json:"connection,omitempty"`
	File       string   `json:"file,omitempty"`
	Line       *int     `json:"line,omitempty"`
	Model      string   `json:"model,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Cache operation types.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheWrite  = "write"
	CacheDelete = "delete"
	CacheRead   = "read"
)

// CacheQuery is one cache operation.
type CacheQuery struct {
	Type       string   `json:"type"`
	Key        string   `json:"key"`
	Value      any      `json:"value,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
	Connection string   `json:"connection,omitempty"`
}

// RedisCommand is one Redis command.
type RedisCommand struct {
	Command    string   `json:"command"`
	Parameters []any    `json:"parameters,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
	Connection string   `json:"connection,omitempty"`
}

// LogEntry is one application log record.
type LogEntry struct {
	Level   string   `json:"level"`
	Message string   `json:"message"`
	Context Object   `json:"context,omitempty"`
	Time    *float64 `json:"time,omitempty"`
	File    string   `json:"file,omitempty"`
	Line    *int     `json:"line,omitempty"`
}

// TimelineEvent is a named interval. Start and End are in the same time base;
// Duration is in milliseconds.
type TimelineEvent struct {
	Description string   `json:"description"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	Duration    float64  `json:"duration"`
	Color       string   `json:"color,omitempty"`
	Data        Object   `json:"data,omitempty"`
	Name        string   `json:"name,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// DispatchedEvent is an application event and its listeners.
type DispatchedEvent struct {
	Event     string   `json:"event"`
	Listeners []string `json:"listeners,omitempty"`
	Data      any      `json:"data,omitempty"`
	Time      *float64 `json:"time,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
}

// RenderedView is a rendered template.
type RenderedView struct {
	Name     string   `json:"name"`
	Path     string   `json:"path,omitempty"`
	Data     Object   `json:"data,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

// HTTPMessage is the request or response half of an outgoing HTTP call.
type HTTPMessage struct {
	Headers Object `json:"headers,omitempty"`
	Body    any    `json:"body,omitempty"`
}

// OutgoingHTTPRequest is an HTTP call made by the application.
type OutgoingHTTPRequest struct {
	Method         string       `json:"method"`
	URL            string       `json:"url"`
	Duration       *float64     `json:"duration,omitempty"`
	ResponseStatus *int         `json:"responseStatus,omitempty"`
	Request        *HTTPMessage `json:"request,omitempty"`
	Response       *HTTPMessage `json:"response,omitempty"`
}

// IndexEntry is the summary of a Request kept in a storage index.
type IndexEntry struct {
	ID               string      `json:"id"`
	Time             float64     `json:"time"`
	Method           string      `json:"method,omitempty"`
	URI              string      `json:"uri,omitempty"`
	Controller       string      `json:"controller,omitempty"`
	ResponseStatus   *int        `json:"responseStatus,omitempty"`
	ResponseDuration *float64    `json:"responseDuration,omitempty"`
	Type             RequestType `json:"type"`
	CommandName      string      `json:"commandName,omitempty"`
}
