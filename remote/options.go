package remote

import "time"

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for connecting to the NATS broker.
type Options struct {
	URL           string
	Username      string
	Password      string
	Subject       string
	StateInterval time.Duration
}

// URL is a functional option to set the address of the NATS broker
// (e.g. nats://localhost:4222).
func URL(url string) Option {
	return func(args *Options) {
		args.URL = url
	}
}

// Credentials is a functional option to set username and password for
// the NATS broker.
func Credentials(username, password string) Option {
	return func(args *Options) {
		args.Username = username
		args.Password = password
	}
}

// Subject is a functional option to set the subject prefix. Requests are
// received on <subject>.volume and <subject>.backend.
func Subject(s string) Option {
	return func(args *Options) {
		args.Subject = s
	}
}

// StateInterval is a functional option to set how often the state is
// published.
func StateInterval(d time.Duration) Option {
	return func(args *Options) {
		args.StateInterval = d
	}
}
