package inspector

import "context"

const (
	xdebugProfileMessage = "Xdebug profiling data is not stored in Clockwork. " +
		"To analyze Xdebug profiles, use tools like Webgrind, QCacheGrind, or PHPStorm to read .cachegrind files directly. " +
		"Configure Xdebug with xdebug.output_dir to specify where profile files are saved."

	xdebugHotspotsMessage = "Xdebug hotspot analysis is not available through Clockwork. " +
		"To identify performance hotspots, enable Xdebug profiling (xdebug.mode=profile) " +
		"and analyze the generated .cachegrind files with QCacheGrind, Webgrind, or similar tools."

	defaultHotspotLimit = 10
)

// XdebugProfile reports that Xdebug profiles are unavailable.
type XdebugProfile struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// GetXdebugProfile always reports the profile as unavailable: Clockwork does
// not store cachegrind output.
func (i *Inspector) GetXdebugProfile(_ context.Context, id string) XdebugProfile {
	return XdebugProfile{Message: xdebugProfileMessage, RequestID: id}
}

// HotspotsInput is the input of GetXdebugHotspots.
type HotspotsInput struct {
	RequestID string `json:"requestId" jsonschema:"description=Clockwork request ID"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"description=Max hotspots to return,default=10"`
}

// XdebugHotspots reports that hotspot analysis is unavailable.
type XdebugHotspots struct {
	XdebugProfile
	Limit    int   `json:"limit"`
	Hotspots []any `json:"hotspots"`
}

// GetXdebugHotspots always reports an empty hotspot list.
func (i *Inspector) GetXdebugHotspots(_ context.Context, in HotspotsInput) XdebugHotspots {
	limit := defaultHotspotLimit
	if in.Limit != nil {
		limit = *in.Limit
	}
	return XdebugHotspots{
		XdebugProfile: XdebugProfile{Message: xdebugHotspotsMessage, RequestID: in.RequestID},
		Limit:         limit,
		Hotspots:      []any{},
	}
}
