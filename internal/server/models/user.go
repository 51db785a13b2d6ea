package models

import "time"

// User is a registered account. PasswordHash holds the bcrypt encoding
// and is never serialized.
type User struct {
	ID           int64     `json:"id_usuario"`
	CPF          string    `json:"cpf"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"nome"`
	BirthDate    Date      `json:"data_nascimento"`
	Gender       string    `json:"genero"`
	Email        string    `json:"email"`
	Phone        string    `json:"telefone"`
	Address      string    `json:"endereco_completo"`
	CreatedAt    time.Time `json:"criado_em"`
}
