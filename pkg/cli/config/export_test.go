package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, riskURL string) *Slack {
	return &Slack{
		botToken: botToken,
		riskURL:  riskURL,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dsn string) *Repository {
	return &Repository{
		backend: backend,
		dsn:     dsn,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format string) *Logger {
	return &Logger{
		level:  level,
		format: format,
	}
}

func NewOrganizationsForTest(path string) *Organizations {
	return &Organizations{path: path}
}

func NewCacheForTest(addr string) *Cache {
	return &Cache{addr: addr}
}
