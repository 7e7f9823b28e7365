// Package logger provides structured logging for whisperbot using zerolog.
//
// Loggers are component-scoped and carry structured fields:
//
//	log := logger.WithComponent("engine")
//	log.Info("engine exited", logger.Fields(logger.FieldJobID, 7, logger.FieldModel, "base"))
package logger
