package models

import "time"

// Prescription is an uploaded medical prescription. Attachment is the
// stored file name, or empty when none was sent.
type Prescription struct {
	ID             int64     `json:"id_receita"`
	UserID         int64     `json:"id_usuario"`
	MedicationName string    `json:"nome_medicamento"`
	ExpiresOn      Date      `json:"validade"`
	Attachment     string    `json:"anexo_receita"`
	CreatedAt      time.Time `json:"criado_em"`
}
