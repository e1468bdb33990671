package obs

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// obs-websocket v5 protocol opcodes.
const (
	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opEvent           = 5
	opRequest         = 6
	opRequestResponse = 7
)

// rpcVersion is the obs-websocket RPC version this client speaks.
const rpcVersion = 1

// closeCodeAuthFailed is the WebSocket close code obs-websocket uses to
// reject an Identify with bad credentials.
const closeCodeAuthFailed = 4009

// requestSetScene is the request type for changing the program scene.
const requestSetScene = "SetCurrentProgramScene"

// envelope is the outer frame of every obs-websocket message.
type envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

// helloData is the payload of the server's Hello (op 0).
type helloData struct {
	OBSWebSocketVersion string     `json:"obsWebSocketVersion"`
	RPCVersion          int        `json:"rpcVersion"`
	Authentication      *helloAuth `json:"authentication"`
}

// helloAuth carries the challenge/salt pair when authentication is required.
type helloAuth struct {
	Challenge string `json:"challenge"`
	Salt      string `json:"salt"`
}

// identifyData is the payload of the client's Identify (op 1).
// Event deliveries are not subscribed; this client only issues requests.
type identifyData struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

// identifiedData is the payload of the server's Identified (op 2).
type identifiedData struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

// requestData is the payload of a client Request (op 6).
type requestData struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

// requestResponseData is the payload of a RequestResponse (op 7).
type requestResponseData struct {
	RequestType   string        `json:"requestType"`
	RequestID     string        `json:"requestId"`
	RequestStatus requestStatus `json:"requestStatus"`
}

// requestStatus reports the outcome of a request.
type requestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

// authResponse computes the Identify authentication string:
//
//	base64(sha256(base64(sha256(password + salt)) + challenge))
func authResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	response := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(response[:])
}
