// Package relay is the real-time broker between the doctor dashboard and the
// patient test runner. It keeps two global role groups, forwards events
// between them according to a fixed per-event table, and emits presence
// notifications on join and disconnect. Nothing is persisted and nothing is
// queued: a broadcast to an empty group is a no-op.
//
// One doctor/patient pair of groups exists per process; there is no session
// keying, so a single supervised session is active system-wide at a time.
package relay

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Group is the role group a connection belongs to.
type Group int

const (
	GroupNone Group = iota
	GroupDoctor
	GroupPatient
)

// Event is the wire envelope for every relay message, in both directions.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Conn is the write side of a relay connection. *websocket.Conn satisfies it;
// tests substitute an in-memory recorder.
type Conn interface {
	WriteJSON(v any) error
}

// Client is one connected party. A client starts in no group and moves into
// one on its join event; it never leaves short of disconnecting.
type Client struct {
	ID uuid.UUID

	conn  Conn
	group Group

	// writeMu serializes writes: the websocket allows a single writer and
	// broadcasts may reach the same client from several goroutines.
	writeMu sync.Mutex
}

func (c *Client) send(ev Event) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(ev); err != nil {
		log.Printf("relay: write to %s: %v", c.ID, err)
	}
}

// Hub owns the two role groups and the event forwarding rules.
type Hub struct {
	mu       sync.Mutex
	doctors  map[uuid.UUID]*Client
	patients map[uuid.UUID]*Client

	// OnPatientIdentified, when set, is called with the patient name every
	// time a patient_identified event passes through the hub.
	OnPatientIdentified func(name string)
}

func NewHub() *Hub {
	return &Hub{
		doctors:  make(map[uuid.UUID]*Client),
		patients: make(map[uuid.UUID]*Client),
	}
}

// Register creates a client for a freshly accepted connection. The client
// belongs to no group until a join event arrives.
func (h *Hub) Register(conn Conn) *Client {
	return &Client{ID: uuid.New(), conn: conn}
}

// Disconnect removes the client from its group and tells the doctor side the
// patient went offline. The offline notice fires even for clients that never
// joined a group; broadcasting to an empty doctor group is harmless.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	delete(h.doctors, c.ID)
	delete(h.patients, c.ID)
	c.group = GroupNone
	h.mu.Unlock()

	h.broadcast(GroupDoctor, Event{Type: "patient_status", Data: map[string]any{"online": false}})
	log.Printf("relay: client %s disconnected", c.ID)
}

// HandleEvent applies the forwarding table to one incoming event.
func (h *Hub) HandleEvent(c *Client, ev Event) {
	switch ev.Type {
	case "join_doctor":
		h.join(c, GroupDoctor)
		c.send(Event{Type: "status", Data: map[string]any{"msg": "Doctor connected"}})
		log.Printf("relay: doctor %s joined", c.ID)

	case "join_patient":
		h.join(c, GroupPatient)
		c.send(Event{Type: "status", Data: map[string]any{"msg": "Patient connected"}})
		h.broadcast(GroupDoctor, Event{Type: "patient_status", Data: map[string]any{"online": true}})
		log.Printf("relay: patient %s joined", c.ID)

	case "doctor_command":
		data := map[string]any{
			"command": ev.Data["command"],
			"test":    ev.Data["test"],
		}
		h.broadcast(GroupPatient, Event{Type: "doctor_instruction", Data: data})
		c.send(Event{Type: "command_sent", Data: data})

	case "test_completed":
		data := withTimestamp(ev.Data)
		h.broadcast(GroupDoctor, Event{Type: "test_result", Data: data})
		h.broadcast(GroupDoctor, Event{Type: "patient_view_update", Data: map[string]any{
			"action":    "test_completed",
			"test":      valueOr(data, "test_name", "unknown"),
			"patient":   valueOr(data, "patient_name", "unknown"),
			"accuracy":  valueOr(data, "accuracy", 0),
			"timestamp": data["timestamp"],
		}})

	case "patient_view_update":
		data := withTimestamp(ev.Data)
		data["mirror_enabled"] = true
		h.broadcast(GroupDoctor, Event{Type: "patient_view_update", Data: data})

	case "enable_screen_mirror":
		h.broadcast(GroupPatient, Event{Type: "mirror_screen", Data: ev.Data})

	case "patient_screen_data":
		h.broadcast(GroupDoctor, Event{Type: "patient_screen_mirror", Data: ev.Data})

	case "patient_navigation":
		h.broadcast(GroupDoctor, Event{Type: "patient_navigation", Data: ev.Data})

	case "patient_identified":
		if h.OnPatientIdentified != nil {
			if name, ok := ev.Data["patient_name"].(string); ok && name != "" {
				h.OnPatientIdentified(name)
			}
		}
		h.broadcast(GroupDoctor, Event{Type: "patient_identified", Data: ev.Data})

	default:
		log.Printf("relay: dropping unknown event %q from %s", ev.Type, c.ID)
	}
}

// join moves the client into g. A repeated join simply switches groups; a
// connection is in at most one group at a time.
func (h *Hub) join(c *Client, g Group) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.doctors, c.ID)
	delete(h.patients, c.ID)
	c.group = g
	switch g {
	case GroupDoctor:
		h.doctors[c.ID] = c
	case GroupPatient:
		h.patients[c.ID] = c
	}
}

// broadcast sends ev to every current member of g. The member set is
// snapshotted under the lock; the network writes happen outside it so one
// slow connection cannot stall joins or other broadcasts.
func (h *Hub) broadcast(g Group, ev Event) {
	for _, c := range h.members(g) {
		c.send(ev)
	}
}

func (h *Hub) members(g Group) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	var src map[uuid.UUID]*Client
	switch g {
	case GroupDoctor:
		src = h.doctors
	case GroupPatient:
		src = h.patients
	default:
		return nil
	}
	out := make([]*Client, 0, len(src))
	for _, c := range src {
		out = append(out, c)
	}
	return out
}

// withTimestamp copies data and injects a millisecond timestamp when absent.
// The copy keeps enrichment from leaking into the sender's payload.
func withTimestamp(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	if _, ok := out["timestamp"]; !ok {
		out["timestamp"] = time.Now().UnixMilli()
	}
	return out
}

func valueOr(data map[string]any, key string, def any) any {
	if v, ok := data[key]; ok && v != nil {
		return v
	}
	return def
}
