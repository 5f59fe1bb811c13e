// Package logging provides structured logging configuration for canaryd.
//
// This package wraps log/slog so every component logs the same way. It
// supports configurable log levels and output formats, fan-out to several
// outputs and a file sink that rotates at midnight.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("Starting server on 0.0.0.0:8080")
//	logger.Error("failed to send notification", "error", err)
//
// # File sink
//
// DailyFile writes to a file that is rotated at local midnight, keeping a
// bounded number of old files:
//
//	file := logging.NewDailyFile("server.log", 30)
//	file.Start()
//	defer file.Close()
//
//	logger := slog.New(logging.NewMultiHandler(
//	    logging.NewHandler(logging.Config{Output: file}),
//	    logging.NewHandler(logging.DefaultConfig()),
//	))
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop().
package logging
