package preset

import (
	_ "embed"
	"fmt"

	"github.com/claude/repbook/internal/models"
)

//go:embed builtin/programs.json
var builtinPrograms []byte

// Builtin returns the bundled Upper/Lower, PPL and Full Body programs.
// Each call decodes a fresh copy so callers may keep the result.
func Builtin() []models.Program {
	programs, _, err := Parse(builtinPrograms)
	if err != nil {
		panic(fmt.Sprintf("builtin presets: %v", err))
	}
	for i := range programs {
		programs[i].Source = "builtin"
	}
	return programs
}
