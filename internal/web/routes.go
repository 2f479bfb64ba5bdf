package web

import (
	"io"
	"net/http"

	"github.com/rook-computer/mirror/internal/input"
	"github.com/rook-computer/mirror/internal/state"
)

// StateSource provides the runtime snapshot.
type StateSource interface {
	Snapshot() state.State
}

// FrameSource encodes the last presented frame. It reports false when no
// frame has been presented yet.
type FrameSource interface {
	WritePNG(w io.Writer) (bool, error)
}

type APIV1Config struct {
	State StateSource
	// Frames is optional; without it /frame.png answers 404.
	Frames FrameSource
}

// RegisterAPIV1 registers the debug API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, cfg APIV1Config) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(cfg)))
}

// RegisterSim registers the simulator controls under /sim/. Requests are
// turned into input events for the render loop.
func RegisterSim(mux *http.ServeMux, events input.Sender) {
	mux.Handle("/sim/", http.StripPrefix("/sim", simRouter(events)))
}

// NewDefaultMux builds the mux used by both the device and the simulator.
// events may be nil, in which case /sim/ is not registered.
func NewDefaultMux(cfg APIV1Config, events input.Sender) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, cfg)
	if events != nil {
		RegisterSim(mux, events)
	}
	return mux
}
