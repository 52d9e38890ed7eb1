// Package env provides identity of the host running the bridge.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine id so it is not exposed as is.
const AppID = "newbridge"

// MachineID retrieves an ID identifying the machine, derived from the
// machine id. It falls back to the host name when no machine id exists.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return ShortID(id)
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}

// ShortID truncates a hex id to 12 characters for use in topics.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
