package domain

import "time"

// Draft is an auto-saved, not yet published component tree for a host.
type Draft struct {
	HostType  string        `json:"host_type" yaml:"host_type"`
	HostID    string        `json:"host_id" yaml:"host_id"`
	Tree      ComponentTree `json:"tree" yaml:"tree"`
	Hash      string        `json:"hash" yaml:"hash"`
	UpdatedAt time.Time     `json:"updated_at" yaml:"updated_at"`
}

// DraftKey builds the storage key for a host's draft.
func DraftKey(hostType, hostID string) string {
	return hostType + ":" + hostID
}

// Key returns the storage key of the draft.
func (d *Draft) Key() string {
	return DraftKey(d.HostType, d.HostID)
}
