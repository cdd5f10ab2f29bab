package engine

// EventKind — тип входящего события от транспорта
type EventKind int

const (
	EventCommand EventKind = iota
	EventText
	EventLocation
	EventCallback
)

// Event — одно входящее событие пользователя, уже декодированное
// транспортом. Заполнены только поля, относящиеся к Kind.
type Event struct {
	Kind      EventKind
	Command   string // команда без слэша
	Text      string
	Latitude  float64
	Longitude float64
	Data      string // payload нажатой inline-кнопки
}

// Button — кнопка клавиатуры. Data непустой только у inline-кнопок.
type Button struct {
	Label           string
	Data            string
	RequestLocation bool
}

// Keyboard описывает клавиатуру ответа без привязки к транспорту
type Keyboard struct {
	Inline  bool
	Buttons [][]Button
}

// Reply — одно исходящее сообщение
type Reply struct {
	Text     string
	Keyboard *Keyboard
}
