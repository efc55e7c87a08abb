// Package host is the websocket link to the TilePad plugin runtime.
package host

import (
	"encoding/json"

	"github.com/TilePad/tilepad-plugin-obs-studio/internal/session"
)

type MessageType string

const (
	// Outbound to the host runtime.
	MsgRegisterPlugin  MessageType = "REGISTER_PLUGIN"
	MsgGetProperties   MessageType = "GET_PROPERTIES"
	MsgSetProperties   MessageType = "SET_PROPERTIES"
	MsgSendToInspector MessageType = "SEND_TO_INSPECTOR"

	// Inbound from the host runtime.
	MsgRegistered        MessageType = "REGISTERED"
	MsgProperties        MessageType = "PROPERTIES"
	MsgInspectorOpen     MessageType = "INSPECTOR_OPEN"
	MsgInspectorClose    MessageType = "INSPECTOR_CLOSE"
	MsgRecvFromInspector MessageType = "RECV_FROM_INSPECTOR"
	MsgTileClicked       MessageType = "TILE_CLICKED"
)

// envelope is the wire shape of every runtime message. Only the fields
// relevant to a given type are populated.
type envelope struct {
	Type       MessageType     `json:"type"`
	PluginID   string          `json:"plugin_id,omitempty"`
	Inspector  string          `json:"inspector,omitempty"`
	TileID     string          `json:"tile_id,omitempty"`
	ActionID   string          `json:"action_id,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	Message    json.RawMessage `json:"message,omitempty"`
}

// outEnvelope mirrors envelope with encodable payload fields.
type outEnvelope struct {
	Type       MessageType `json:"type"`
	PluginID   string      `json:"plugin_id,omitempty"`
	Inspector  string      `json:"inspector,omitempty"`
	Properties any         `json:"properties,omitempty"`
	Message    any         `json:"message,omitempty"`
}

// Inspector message vocabulary, shared with the inspector-side javascript.
type InspectorMessageType string

const (
	InGetClientState InspectorMessageType = "GET_CLIENT_STATE"
	InGetProfiles    InspectorMessageType = "GET_PROFILES"
	InGetScenes      InspectorMessageType = "GET_SCENES"
	InConnect        InspectorMessageType = "CONNECT"

	OutClientState InspectorMessageType = "CLIENT_STATE"
	OutProfiles    InspectorMessageType = "PROFILES"
	OutScenes      InspectorMessageType = "SCENES"
)

// InspectorIn is a message received from the inspector UI.
type InspectorIn struct {
	Type InspectorMessageType `json:"type"`
	Auth *session.Auth        `json:"auth,omitempty"`
}

// SelectOption is one entry of a selection dropdown in the inspector.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InspectorOut is a message sent to the inspector UI.
type InspectorOut struct {
	Type     InspectorMessageType `json:"type"`
	State    string               `json:"state,omitempty"`
	Profiles []SelectOption       `json:"profiles,omitempty"`
	Scenes   []SelectOption       `json:"scenes,omitempty"`
}
