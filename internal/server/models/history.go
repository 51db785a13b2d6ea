package models

import "time"

// HistoryEntry is one medical history record. At least one of Condition
// and Allergy is set.
type HistoryEntry struct {
	ID        int64     `json:"id_historico"`
	UserID    int64     `json:"id_usuario"`
	Condition *string   `json:"condicao"`
	Allergy   *string   `json:"alergia"`
	CreatedAt time.Time `json:"criado_em"`
}
