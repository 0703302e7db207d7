package websocket

import "encoding/json"

// Message is the envelope of every client request and server push.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectPayload attaches the socket to a lobby's event stream. GameID
// is optional: clients send connect again with it once they learn the
// game id from the game-started event.
type ConnectPayload struct {
	LobbyID  string `json:"lobby_id"`
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id,omitempty"`
}

type StartGamePayload struct {
	LobbyID  string `json:"lobby_id"`
	DeckID   string `json:"deck_id"`
	GameType string `json:"game_type"`
}

type GetWordsPayload struct {
	GameID string `json:"game_id"`
}

type ChooseWordPayload struct {
	GameID string `json:"game_id"`
	Word   string `json:"word"`
}

type ChatPayload struct {
	LobbyID string `json:"lobby_id"`
	Message string `json:"message"`
}

type WordsPayload struct {
	GameID string   `json:"game_id"`
	Words  []string `json:"words"`
}

// CloseGuessPayload is sent only to the client whose message was a near
// miss; it is never broadcast.
type CloseGuessPayload struct {
	Similarity float64 `json:"similarity"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
