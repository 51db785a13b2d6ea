package rest

// Client-facing messages. Details stay in the server log.
const (
	msgRegisterFailed   = "Erro ao registrar usuário."
	msgCPFTaken         = "CPF já cadastrado."
	msgInvalidRequest   = "Dados inválidos."
	msgLoginOK          = "Login bem-sucedido!"
	msgBadCredentials   = "Usuário ou senha incorretos!"
	msgServerError      = "Erro no servidor."
	msgMissingFields    = "Faltando dados obrigatórios."
	msgFormParseFailed  = "Erro ao processar o arquivo."
	msgFileTooLarge     = "Arquivo muito grande."
	msgPrescriptionOK   = "Receita salva com sucesso."
	msgPrescriptionFail = "Erro ao salvar a receita."
	msgPrescriptionList = "Erro ao carregar receitas."
	msgHistoryRequired  = "É necessário fornecer ao menos uma condição ou alergia."
	msgHistoryOK        = "Histórico salvo com sucesso."
	msgHistoryFail      = "Erro ao salvar no histórico."
	msgHistoryList      = "Erro ao carregar históricos."
	msgForbiddenOwner   = "Operação não permitida para outro usuário."

	errUnauthenticated = "unauthenticated"
	errForbidden       = "forbidden"
	errInternal        = "internal server error"
)
