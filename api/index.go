package handler

import (
	"net/http"
	"sync"
	"voyage/config"
	"voyage/di"
	"voyage/shared/logger"
)

var (
	service http.Handler
	once    sync.Once
)

// Handler keeps one wired service per warm instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		service = di.InitializeService()
	})

	service.ServeHTTP(w, r)
}
