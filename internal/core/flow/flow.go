// Package flow provides the core flow domain entities: the persisted
// node chain, node variant configurations, and schedule data. It has no
// dependencies on the execution or adapter layers.
package flow

import (
	"time"
)

// Status represents the lifecycle state of a flow.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// Flow is a named, persisted automation: an ordered node chain plus
// flow-level metadata and an optional schedule configuration.
type Flow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Status      Status         `json:"status"`
	Nodes       []Node         `json:"nodes"`
	Schedule    *Schedule      `json:"schedule,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Validate ensures flow integrity: name present, node IDs unique within
// the flow, every nextNodeId pointing at an existing node, and at most
// one entry point (node with no incoming reference).
func (f *Flow) Validate() error {
	if f.Name == "" {
		return ErrInvalidFlowName
	}
	ids := make(map[string]struct{}, len(f.Nodes))
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if err := n.Validate(); err != nil {
			return err
		}
		if _, dup := ids[n.NodeID]; dup {
			return ErrDuplicateNodeID
		}
		ids[n.NodeID] = struct{}{}
	}
	incoming := make(map[string]int, len(f.Nodes))
	for i := range f.Nodes {
		next := f.Nodes[i].NextNodeID
		if next == "" {
			continue
		}
		if _, ok := ids[next]; !ok {
			return ErrDanglingNextNode
		}
		incoming[next]++
	}
	roots := 0
	for i := range f.Nodes {
		if incoming[f.Nodes[i].NodeID] == 0 {
			roots++
		}
	}
	if len(f.Nodes) > 0 && roots > 1 {
		return ErrMultipleEntryPoints
	}
	return nil
}

// EntryNode returns the node with no incoming nextNodeId reference.
// For an empty flow it returns nil.
func (f *Flow) EntryNode() *Node {
	incoming := make(map[string]bool, len(f.Nodes))
	for i := range f.Nodes {
		if next := f.Nodes[i].NextNodeID; next != "" {
			incoming[next] = true
		}
	}
	for i := range f.Nodes {
		if !incoming[f.Nodes[i].NodeID] {
			return &f.Nodes[i]
		}
	}
	return nil
}

// NodeByID returns the node with the given ID, or nil.
func (f *Flow) NodeByID(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].NodeID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}
