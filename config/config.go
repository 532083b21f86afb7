package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		Port string `env:"SERVER_PORT" envDefault:"5260"`
	}

	Engine struct {
		// Maximum number of concurrent fetches against the comparable source
		FetchWorkers int `env:"ENGINE_FETCH_WORKERS" envDefault:"4"`

		// Timeout per source call (in seconds)
		FetchTimeout int `env:"ENGINE_FETCH_TIMEOUT" envDefault:"15"`

		// Overall deadline for one valuation request (in seconds)
		RequestDeadline int `env:"ENGINE_REQUEST_DEADLINE" envDefault:"60"`

		// Number of comparables included in the result
		TopComparables int `env:"ENGINE_TOP_COMPARABLES" envDefault:"5"`
	}

	Source struct {
		BaseURL string `env:"SOURCE_BASE_URL" envDefault:"https://www.reinfolib.mlit.go.jp/ex-api/external"`
		APIKey  string `env:"SOURCE_API_KEY"`
	}

	BatchProcessing struct {
		// Maximum number of snapshots to accumulate before persisting
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"50"`

		// Queue buffer size in batches
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
