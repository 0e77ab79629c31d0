package main

import (
	"log"

	"github.com/ledgerbank/transfer-engine/internal/pkg/components"
	"github.com/ledgerbank/transfer-engine/internal/pkg/logging"
)

func main() {
	container, err := components.New()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	logging.Info("transfer engine initialized successfully", map[string]interface{}{
		"port": container.GetConfig().Server.Port,
	})

	if err := container.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
