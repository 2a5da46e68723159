package safety

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/protocol"
)

// Severity is how bad a system error is.
type Severity int

// Severities
const (
	Recoverable Severity = iota
	Critical
)

func (s Severity) String() string {
	switch s {
	case Recoverable:
		return "Recoverable"
	case Critical:
		return "Critical"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Classify assigns the severity of a failure of a sensor kind.
// Every kind must be listed here; an unlisted kind panics.
func Classify(kind protocol.SensorKind) Severity {
	switch kind {
	case protocol.Cliff:
		return Critical
	case protocol.Distance, protocol.Imu:
		return Recoverable
	}
	panic(fmt.Sprintf("no severity assigned to %s", kind))
}

// Reporter relays safety events upstream. Implementations must not
// block.
type Reporter interface {
	ReportError(err protocol.SystemError, severity Severity)
	ReportReflex(state State, cause error)
}

// Handler is the error handler task.
type Handler struct {
	Errors   *bus.Queue[protocol.SystemError]
	Reflex   *Reflex
	Reporter Reporter
}

// NewHandler creates the error handler.
func NewHandler(errs *bus.Queue[protocol.SystemError], reflex *Reflex) *Handler {
	return &Handler{Errors: errs, Reflex: reflex}
}

// Name implements Named.
func (h *Handler) Name() string {
	return "errors"
}

// AddToLoop implements LoopAdder.
func (h *Handler) AddToLoop(l *fx.Loop) {
	l.AddRunnable(h)
}

// Run implements Runnable.
func (h *Handler) Run(ctx context.Context) error {
	for {
		e, err := h.Errors.Receive(ctx)
		if err != nil {
			return err
		}
		h.Handle(e)
	}
}

// Handle classifies e and applies the local action. Critical errors
// trigger the reflex before Handle returns.
func (h *Handler) Handle(e protocol.SystemError) Severity {
	var severity Severity
	switch err := e.(type) {
	case protocol.SensorError:
		severity = Classify(err.Kind)
	default:
		panic(fmt.Sprintf("unknown system error %T", e))
	}
	switch severity {
	case Critical:
		h.Reflex.EmergencyStop(e)
	case Recoverable:
		glog.Warningf("recoverable error: %v", e)
	}
	if h.Reporter != nil {
		h.Reporter.ReportError(e, severity)
	}
	return severity
}
