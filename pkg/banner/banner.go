package banner

import (
	"fmt"

	"pubchat/pkg/config"
)

const banner = `
██████╗ ██╗   ██╗██████╗  ██████╗██╗  ██╗ █████╗ ████████╗
██╔══██╗██║   ██║██╔══██╗██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██████╔╝██║   ██║██████╔╝██║     ███████║███████║   ██║
██╔═══╝ ██║   ██║██╔══██╗██║     ██╔══██║██╔══██║   ██║
██║     ╚██████╔╝██████╔╝╚██████╗██║  ██║██║  ██║   ██║
╚═╝      ╚═════╝ ╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// Print writes the startup banner plus the effective relay settings.
func Print(cfg *config.Config, addr, source, version string) {
	if addr == "" && cfg != nil {
		addr = cfg.Addr()
	}
	if source == "" {
		source = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", source)
	if cfg != nil && cfg.Relay.Sweep.Enabled {
		fmt.Printf("Sweep:    %s (idle %s)\n", cfg.Relay.Sweep.Cron, cfg.SweepIdlePeriod())
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /v1/ws      - websocket endpoint for chat clients")
	fmt.Println("GET  /healthz    - liveness")
	fmt.Println("GET  /readyz     - readiness")
	fmt.Println("GET  /metrics    - Prometheus metrics")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("pubchat --url ws://localhost%s/v1/ws --channel demo --user 7\n", addr)
}
