package banner

import (
	"fmt"
)

const banner = `
 ██████╗ ██████╗ ███╗   ██╗███████╗ ██████╗ ██╗     ███████╗██████╗
██╔════╝██╔═══██╗████╗  ██║██╔════╝██╔═══██╗██║     ██╔════╝██╔══██╗
██║     ██║   ██║██╔██╗ ██║███████╗██║   ██║██║     █████╗  ██║  ██║
██║     ██║   ██║██║╚██╗██║╚════██║██║   ██║██║     ██╔══╝  ██║  ██║
╚██████╗╚██████╔╝██║ ╚████║███████║╚██████╔╝███████╗███████╗██████╔╝
 ╚═════╝ ╚═════╝ ╚═╝  ╚═══╝╚══════╝ ╚═════╝ ╚══════╝╚══════╝╚═════╝
`

// Print writes the startup banner with the effective runtime settings.
func Print(addr, dbPath, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/consoles - Create a console from the world template")
	fmt.Println("POST /v1/consoles/{id}/messages - Post a message (JSON: text, media, user)")
	fmt.Println("GET  /v1/consoles - List readable consoles")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/consoles' -H 'X-Actor-ID: gm' -H 'X-Role-Name: admin'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/consoles' -H 'X-Actor-ID: player1'\n", addr)
}
