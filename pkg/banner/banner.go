package banner

import (
	"fmt"

	"paperguard/pkg/config"
)

const banner = `
██████╗  █████╗ ██████╗ ███████╗██████╗  ██████╗ ██╗   ██╗ █████╗ ██████╗ ██████╗
██╔══██╗██╔══██╗██╔══██╗██╔════╝██╔══██╗██╔════╝ ██║   ██║██╔══██╗██╔══██╗██╔══██╗
██████╔╝███████║██████╔╝█████╗  ██████╔╝██║  ███╗██║   ██║███████║██████╔╝██║  ██║
██╔═══╝ ██╔══██║██╔═══╝ ██╔══╝  ██╔══██╗██║   ██║██║   ██║██╔══██║██╔══██╗██║  ██║
██║     ██║  ██║██║     ███████╗██║  ██║╚██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝
╚═╝     ╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝  ╚═╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`

// PrintWithEff prints the startup banner using the resolved effective
// config.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Server.DBPath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config: %s\n", src)

	if eff.Config != nil {
		cc := eff.Config.Check
		fmt.Printf("Checks:   max=%d threshold=%.1f%%\n", cc.MaxChecksOrDefault(), cc.ThresholdOrDefault())
		if eff.Config.Chain.RPCEndpoint != "" {
			fmt.Printf("Gateway:  %s (contract %s)\n", eff.Config.Chain.RPCEndpoint, eff.Config.Chain.Contract)
		} else {
			fmt.Println("Gateway:  disabled (local quota only)")
		}
		if eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != "" {
			fmt.Println("TLS:      configured")
		} else {
			fmt.Println("TLS:      unconfigured")
		}
		if eff.Config.Retention.Enabled {
			fmt.Printf("Retention: enabled (cron=%s period=%s)\n", eff.Config.Retention.Cron, eff.Config.Retention.Period)
		} else {
			fmt.Println("Retention: disabled")
		}
	}

	fmt.Println("\n== Examples ===================================================")
	fmt.Println("curl -X POST 'http://<host>:<port>/paper' -d '{\"bucketHash\":\"abc\",\"title\":\"T\",\"content\":\"...\",\"authorAddress\":\"0x...\"}'")
	fmt.Println("curl -X POST 'http://<host>:<port>/plagiarism-check' -d '{\"title\":\"T\",\"content\":\"...\",\"authorAddress\":\"0x...\"}'")

	fmt.Println("\n== Logs: =================================================")
}
