package domain

type Button struct {
	Label        string
	CallbackData string
}

// Keyboard is an inline keyboard, one slice of buttons per row.
type Keyboard struct {
	Rows [][]Button
}
