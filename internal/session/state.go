package session

import "encoding/json"

// State is the lifecycle state of the OBS connection. It is the single
// source of truth published to the inspector.
type State int

const (
	Initial State = iota
	NotConnected
	Connecting
	RetryConnecting
	Connected
	ConnectError
	InvalidAuth
)

var stateNames = map[State]string{
	Initial:         "INITIAL",
	NotConnected:    "NOT_CONNECTED",
	Connecting:      "CONNECTING",
	RetryConnecting: "RETRY_CONNECTING",
	Connected:       "CONNECTED",
	ConnectError:    "CONNECT_ERROR",
	InvalidAuth:     "INVALID_AUTH",
}

var stateFromName = map[string]State{
	"INITIAL":          Initial,
	"NOT_CONNECTED":    NotConnected,
	"CONNECTING":       Connecting,
	"RETRY_CONNECTING": RetryConnecting,
	"CONNECTED":        Connected,
	"CONNECT_ERROR":    ConnectError,
	"INVALID_AUTH":     InvalidAuth,
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := stateFromName[name]; ok {
		*s = v
	}
	return nil
}

// Auth is the credential set for the OBS websocket server. An empty
// password means the server does not require authentication.
type Auth struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
}

func (a Auth) valid() bool {
	return a.Host != "" && a.Port > 0 && a.Port <= 65535
}
