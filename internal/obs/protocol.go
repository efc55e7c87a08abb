package obs

import "encoding/json"

// obs-websocket v5 opcodes, see the protocol documentation.
const (
	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opEvent           = 5
	opRequest         = 6
	opRequestResponse = 7
)

// CloseAuthFailed is the close code obs-websocket uses when the Identify
// authentication string is wrong or missing.
const CloseAuthFailed = 4009

const rpcVersion = 1

type inFrame struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type outFrame struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type helloData struct {
	ObsWebSocketVersion string         `json:"obsWebSocketVersion"`
	RPCVersion          int            `json:"rpcVersion"`
	Authentication      *authChallenge `json:"authentication,omitempty"`
}

type authChallenge struct {
	Challenge string `json:"challenge"`
	Salt      string `json:"salt"`
}

type identifyData struct {
	RPCVersion         int    `json:"rpcVersion"`
	EventSubscriptions int    `json:"eventSubscriptions"`
	Authentication     string `json:"authentication,omitempty"`
}

type requestData struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type requestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

type responseData struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus requestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}
