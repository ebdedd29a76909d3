package internal

import (
	"io"

	"github.com/starford/professor/internal/llm"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator llm.Generator
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator overrides the slide generator selected from configuration.
func WithGenerator(g llm.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}

// WithLogOutput sends structured logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
