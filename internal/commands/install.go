package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gerunddev/notionbridge/internal/styles"
)

const serviceName = "notionbridge"

// service describes the user service that keeps `notionbridge watch` running
type service struct {
	Path    string
	Content string
	Enable  [][]string
	Disable [][]string
}

// serviceFor returns the service definition for an OS, or false when the
// OS has no supported service manager
func serviceFor(goos, home, execPath, logFile string) (service, bool) {
	switch goos {
	case "darwin":
		path := filepath.Join(home, "Library", "LaunchAgents", "com."+serviceName+".plist")
		return service{
			Path: path,
			Content: fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>com.%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>watch</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardErrorPath</key>
	<string>%s</string>
</dict>
</plist>
`, serviceName, execPath, logFile),
			Enable:  [][]string{{"launchctl", "load", path}},
			Disable: [][]string{{"launchctl", "unload", path}},
		}, true

	case "linux":
		unit := serviceName + ".service"
		return service{
			Path: filepath.Join(home, ".config", "systemd", "user", unit),
			Content: fmt.Sprintf(`[Unit]
Description=notionbridge - push Markdown notes to Notion on save
After=network-online.target

[Service]
Type=simple
ExecStart=%s watch
Restart=on-failure
RestartSec=10

[Install]
WantedBy=default.target
`, execPath),
			Enable: [][]string{
				{"systemctl", "--user", "daemon-reload"},
				{"systemctl", "--user", "enable", "--now", unit},
			},
			Disable: [][]string{
				{"systemctl", "--user", "disable", "--now", unit},
				{"systemctl", "--user", "daemon-reload"},
			},
		}, true
	}
	return service{}, false
}

func currentService() service {
	home, err := os.UserHomeDir()
	if err != nil {
		fail("Failed to get home directory", err)
	}
	execPath, err := os.Executable()
	if err != nil {
		fail("Failed to get executable path", err)
	}
	cfg := loadConfig()

	svc, ok := serviceFor(runtime.GOOS, home, execPath, cfg.LogFile)
	if !ok {
		fail("Unsupported operating system: "+runtime.GOOS, nil)
	}
	return svc
}

// Install writes a user service that runs watch at login
func Install() {
	fmt.Println(styles.TitleStyle.Render("notionbridge install"))
	fmt.Println()

	svc := currentService()
	if err := os.MkdirAll(filepath.Dir(svc.Path), 0755); err != nil {
		fail("Failed to create service directory", err)
	}
	if err := os.WriteFile(svc.Path, []byte(svc.Content), 0644); err != nil {
		fail("Failed to write service file", err)
	}

	fmt.Println(styles.SuccessStyle.Render("✓ Service file created: " + svc.Path))
	fmt.Println()
	fmt.Println("To enable the service:")
	for _, c := range svc.Enable {
		fmt.Println(styles.DimStyle.Render("  " + strings.Join(c, " ")))
	}
}

// Uninstall disables and removes the user service
func Uninstall() {
	fmt.Println(styles.TitleStyle.Render("notionbridge uninstall"))
	fmt.Println()

	svc := currentService()
	if _, err := os.Stat(svc.Path); os.IsNotExist(err) {
		fmt.Println(styles.WarningStyle.Render("⚠ Service file not found: " + svc.Path))
		return
	}

	// The service may not be loaded
	for _, c := range svc.Disable {
		if err := exec.Command(c[0], c[1:]...).Run(); err != nil {
			fmt.Println(styles.WarningStyle.Render("⚠ " + strings.Join(c, " ") + ": " + err.Error()))
		}
	}

	if err := os.Remove(svc.Path); err != nil {
		fail("Failed to remove service file", err)
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Service file removed: " + svc.Path))
}
