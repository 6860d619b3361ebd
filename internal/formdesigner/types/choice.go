package types

// Choice - вариант выбора: значение, которое отправляет форма, и подпись для пользователя.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
