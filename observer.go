package fetch

import (
	"log"
	"time"
)

// Exchange describes a finished exchange.
type Exchange struct {
	Method string
	URL    string
	// Response is nil if the exchange failed.
	Response *Response
	Err      error
	// Stage is Parsed for successful exchanges, otherwise the stage the failure happened at.
	Stage   Stage
	Started time.Time
	Elapsed time.Duration
}

// Observer is notified synchronously after every exchange that passed the build stage,
// right before its future is resolved.
type Observer interface {
	Observe(Exchange)
}

type ObserverFunc func(Exchange)

func (o ObserverFunc) Observe(exchange Exchange) {
	o(exchange)
}

type Logger interface {
	Printf(fmt string, v ...any)
}

// LogObserver logs every exchange. If no loggers are passed, log.Default() is used.
func LogObserver(loggers ...Logger) Observer {
	if len(loggers) == 0 {
		loggers = append(loggers, log.Default())
	}

	return ObserverFunc(func(exchange Exchange) {
		for _, logger := range loggers {
			if exchange.Err != nil {
				logger.Printf(
					"%s %s failed while %s: %s (%s)",
					exchange.Method, exchange.URL, exchange.Stage, exchange.Err, exchange.Elapsed,
				)
				continue
			}

			logger.Printf(
				"%s %s %d (%s)",
				exchange.Method, exchange.URL, exchange.Response.StatusCode(), exchange.Elapsed,
			)
		}
	})
}
