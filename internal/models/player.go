package models

// Player участник комнаты, привязан к одному соединению
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsHost         bool   `json:"isHost"`
	VoiceEnabled   bool   `json:"voiceEnabled"`
	SelectiveVoice bool   `json:"selectiveMode"`
	VoiceMuted     bool   `json:"voiceMuted"`
}
