package telemetry

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the machine ID so it is not exposed verbatim.
const AppID = "ps2serial"

// DefaultAdapterID derives a stable adapter ID from the machine ID.
func DefaultAdapterID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return AppID
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return AppID + "-" + id
}
