package entity

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
	LobbyID string `json:"lobby_id,omitempty"`
}
