package mirror

import "go.trai.ch/zerr"

var (
	// ErrConfig is returned for a malformed configuration or a missing required field.
	ErrConfig = zerr.New("config error")

	// ErrModuleLoad is returned when a module source cannot be resolved or its Init fails.
	ErrModuleLoad = zerr.New("module load error")

	// ErrModuleDraw is returned when a module's Draw fails or panics.
	ErrModuleDraw = zerr.New("module draw error")

	// ErrAsset is returned for a missing or corrupt image.
	ErrAsset = zerr.New("asset error")

	// ErrCacheWrite is returned when the image cache directory is not writable.
	ErrCacheWrite = zerr.New("cache write error")
)

// Classify returns an error reading "msg: kind" that matches both kind and
// cause with errors.Is and errors.As. A nil cause only carries kind.
func Classify(kind error, msg string, cause error) error {
	return &classified{msg: msg, kind: kind, cause: cause}
}

type classified struct {
	msg   string
	kind  error
	cause error
}

func (e *classified) Error() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return e.msg + ": " + e.kind.Error()
}

func (e *classified) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}
