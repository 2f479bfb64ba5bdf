package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rook-computer/mirror/internal/input"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func apiV1Router(cfg APIV1Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong"))
	})
	mux.HandleFunc("GET /debug", func(w http.ResponseWriter, r *http.Request) { handleDebug(w, cfg.State) })
	mux.HandleFunc("GET /frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, cfg.Frames) })
	return mux
}

func handleDebug(w http.ResponseWriter, src StateSource) {
	if src == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "state not configured")
		return
	}
	writeJSON(w, http.StatusOK, src.Snapshot())
}

func handleFrame(w http.ResponseWriter, src FrameSource) {
	if src == nil {
		writeAPIError(w, http.StatusNotFound, "no_frames", "frame capture not enabled")
		return
	}
	var buf bytes.Buffer
	ok, err := src.WritePNG(&buf)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	if !ok {
		writeAPIError(w, http.StatusServiceUnavailable, "no_frame_yet", "no frame presented yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func simRouter(events input.Sender) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /quit", func(w http.ResponseWriter, r *http.Request) {
		sendEvent(w, events, input.Event{Kind: input.Quit, Source: "sim"})
	})
	mux.HandleFunc("POST /reload", func(w http.ResponseWriter, r *http.Request) {
		sendEvent(w, events, input.Event{Kind: input.Reload, Source: "sim"})
	})
	mux.HandleFunc("POST /resize", func(w http.ResponseWriter, r *http.Request) {
		width, errW := strconv.Atoi(r.URL.Query().Get("w"))
		height, errH := strconv.Atoi(r.URL.Query().Get("h"))
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			writeAPIError(w, http.StatusBadRequest, "bad_size", "w and h must be positive integers")
			return
		}
		sendEvent(w, events, input.Event{Kind: input.Resize, Width: width, Height: height, Source: "sim"})
	})
	return mux
}

func sendEvent(w http.ResponseWriter, events input.Sender, ev input.Event) {
	if !events.Send(ev) {
		writeAPIError(w, http.StatusServiceUnavailable, "busy", "event queue full")
		return
	}
	writeJSON(w, http.StatusAccepted, okResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
