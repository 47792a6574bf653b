// Package logger wraps zerolog for the diacritization service.
//
// Loggers are scoped by component and take structured fields as maps:
//
//	log := logger.Get("engine")
//	log.Info("backend selected", logger.Fields("backend", "camel"))
//
// Console output is meant for the CLI; JSON output for the HTTP service.
package logger
