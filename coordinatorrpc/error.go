package coordinatorrpc

import (
	"encoding/json"
	"net/http"

	"github.com/decred/slog"
	"github.com/miden-multisig/coordinator/engine"
)

// log is replaced by coordinator.SetSubLogger once the root logger is ready.
var log = slog.Disabled

// UseLogger assigns the subsystem logger used by this package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// appError is a request-edge validation failure raised before the engine is
// ever called (bech32 decode failures, malformed base64, an unparsable
// tx_status_filter). It always maps to 400.
type appError struct {
	msg string
}

func (e *appError) Error() string { return e.msg }

func newAppError(msg string) error {
	return &appError{msg: msg}
}

// errorResponse is the JSON body written for any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps an error to an HTTP status code following spec.md §7's
// taxonomy exactly: validation/decoding errors are 400, missing entities are
// 404, everything else is 500. Client errors log at warn, not-found logs at
// info, everything else logs at error.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch e := err.(type) {
	case *appError:
		status = http.StatusBadRequest
		log.Warnf("coordinatorrpc: client error: %v", err)
	case *engine.EngineError:
		switch {
		case e.Kind.NotFound():
			status = http.StatusNotFound
			log.Infof("coordinatorrpc: not found: %v", err)
		case e.ClientFacing():
			status = http.StatusBadRequest
			log.Warnf("coordinatorrpc: client error: %v", err)
		default:
			status = http.StatusInternalServerError
			log.Errorf("coordinatorrpc: server error: %v", err)
		}
	default:
		log.Errorf("coordinatorrpc: server error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
