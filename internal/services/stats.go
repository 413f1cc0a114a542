package services

// RoomCounter количество живых комнат
type RoomCounter interface {
	Len() int
}

// ConnectionCounter количество открытых соединений
type ConnectionCounter interface {
	ClientCount() int
}
