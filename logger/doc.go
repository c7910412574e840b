// Package logger provides structured logging on top of zerolog.
//
// Loggers are scoped per component and take fields as plain maps:
//
//	log := logger.NewDefault("streamupload").WithComponent("upload")
//	log.Info("upload complete", logger.Fields("key", key, "bytes", n))
//
// # Configuration
//
//	logger:
//	  level: "info"
//	  format: "json"
package logger
