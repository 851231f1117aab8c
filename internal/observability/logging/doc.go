// Package logging builds the gateway's slog loggers and carries
// request-scoped loggers through a context.
//
//	logger := logging.New(os.Stdout)
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.ForRequest(ctx, slog.Default()).Info("processing request")
//	}
package logging
