package models

import "time"

// ImportReport содержит итоги одного импорта таблицы.
type ImportReport struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`     // строки данных, прочитанные с листа
	Mapped     int       `json:"mapped"`   // строки с обязательными колонками
	Skipped    int       `json:"skipped"`  // строки, не прошедшие валидацию автомобиля
	Inserted   int       `json:"inserted"` // записанные строки
	Replaced   int64     `json:"replaced"` // строки, удаленные перед вставкой в режиме замены
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
