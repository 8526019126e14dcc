package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary the engine shells out to.
type Requirement struct {
	Name     string
	Command  string
	Purpose  string
	Optional bool
}

// Status is the outcome of resolving one Requirement. On success Command
// holds the absolute path found on PATH.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// CheckBinaries resolves every requirement against PATH, in order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		statuses[i] = resolve(req)
	}
	return statuses
}

func resolve(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Command = path
	status.Available = true
	return status
}

// Missing filters statuses down to unavailable required binaries.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if s.Optional || s.Available {
			continue
		}
		out = append(out, s)
	}
	return out
}
