// Package version хранит сведения о сборке, которые задаются через -ldflags:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/tablebook/internal/version.version=v1.2.0"
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion возвращает версию релиза; её показывают health checks.
func GetVersion() string { return version }

// String форматирует сведения о сборке для команды version.
func String() string {
	return fmt.Sprintf("tablebook version=%s commit=%s date=%s", version, commit, date)
}
