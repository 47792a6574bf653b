// Package process runs model subprocesses with process-group termination:
// on cancellation the whole group gets SIGTERM, then SIGKILL after a grace
// period. Run executes one command to completion. Worker keeps a process
// alive across calls and exchanges one line per request, so a model is
// loaded once. Runner adds a per-call timeout and a circuit breaker so a
// model process that keeps crashing is not restarted on every request.
package process
