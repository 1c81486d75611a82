package skinnymutex

import "go.uber.org/zap"

// logger is the optional structured logger installed via SetLogger. A
// nil logger (the default) makes every call in this file a single
// nil-check, so the uncontended fast paths in mutex.go never pay for
// logging they don't use.
var logger *zap.SugaredLogger

// SetLogger installs l as the package's instrumentation sink. Fat-state
// attach/detach and contended waits are then logged at Debug level.
// Passing nil disables logging again.
//
// go-ilock, the lineage this package's CAS-retry style is drawn from,
// left this kind of tracing in as commented-out fmt.Printf calls
// ("//fmt.Printf("NBT: ISLock has to wait!\n")"); SetLogger is that same
// intent made real and optional instead of dead code.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

func logFatStateAttach(m *Mutex, f *fatState) {
	if logger == nil {
		return
	}
	logger.Debugw("skinnymutex: fat state attached", "mutex", m, "waiters", f.waiters)
}

func logFatStateFree(f *fatState) {
	if logger == nil {
		return
	}
	logger.Debugw("skinnymutex: fat state freed")
}

func logContendedWait(m *Mutex, f *fatState) {
	if logger == nil {
		return
	}
	logger.Debugw("skinnymutex: blocking for handoff", "mutex", m, "waiters", f.waiters)
}
