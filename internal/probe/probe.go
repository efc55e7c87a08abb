// Package probe locates a local OBS process for connect diagnostics.
package probe

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var obsNames = map[string]bool{
	"obs":   true,
	"obs64": true,
	"obs32": true,
}

// Running reports whether an OBS process can be found on this machine.
func Running(ctx context.Context) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, err
	}

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if isOBSName(name) {
			return true, nil
		}
	}
	return false, nil
}

// isOBSName matches the OBS executable names across platforms, without
// catching unrelated processes that merely start with "obs".
func isOBSName(name string) bool {
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, ".exe")
	return obsNames[name]
}

// LogHint logs whether OBS appears to be running, so a failed connect in
// the logs points at the likely cause. Never affects connection state.
func LogHint() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	running, err := Running(ctx)
	if err != nil {
		return
	}
	if running {
		log.Printf("an OBS process is running; check the obs-websocket server port and password")
	} else {
		log.Printf("no OBS process found; is OBS running on the configured host?")
	}
}
