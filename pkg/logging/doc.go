// Package logging provides a structured logging system for zapper.
//
// All log entries go through a single slog.TextHandler configured once at
// startup via InitForCLI. Each call site names a subsystem (e.g.
// "Planner", "Executor", "Supervisor") so output can be grepped or
// filtered by component:
//
//	logging.Info("Executor", "wave %d: starting %d services", n, len(actions))
//	logging.Warn("Supervisor", "cwd %s missing, falling back to project root", cwd)
//	logging.Error("Container", err, "failed to start %s", wireName)
//
// Level filtering happens at the slog.Handler: messages below the
// configured level are dropped with zero allocation.
package logging
